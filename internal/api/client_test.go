package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentsift/interview-client/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, zerolog.Nop())
}

func TestQuestions_OK(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/interviews/iv-42/questions", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"job_title":        "Platform Engineer",
			"duration_minutes": 45,
			"questions": []map[string]any{
				{"id": "q1", "question": "Describe a race condition you debugged.", "category": "concurrency", "difficulty": "hard"},
				{"id": "q2", "question": "What is a context.Context for?", "category": "go", "difficulty": "easy", "answer": "cancellation"},
			},
		})
	})

	set, err := client.Interview("iv-42").Questions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer", set.JobTitle)
	assert.Equal(t, 45, set.DurationMinutes)
	require.Len(t, set.Questions, 2)
	assert.Equal(t, "cancellation", set.Questions[1].Answer)
}

func TestQuestions_RejectsMalformedPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Missing questions entirely.
		json.NewEncoder(w).Encode(map[string]any{"job_title": "Platform Engineer"})
	})

	_, err := client.Interview("iv-42").Questions(context.Background())
	require.Error(t, err)
}

func TestSubmitAnswer_SendsBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/interviews/iv-42/submit-answer", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body model.SubmitAnswerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "q7", body.QuestionID)
		assert.Equal(t, "my answer", body.Answer)
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.Interview("iv-42").SubmitAnswer(context.Background(), "q7", "my answer")
	require.NoError(t, err)
}

func TestComplete_DecodesResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/interviews/iv-42/complete", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"ai_score":       71.3,
			"recommendation": "proceed to onsite",
			"transcript_url": "ignored-by-client",
		})
	})

	result, err := client.Interview("iv-42").Complete(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 71.3, result.AIScore, 0.001)
	assert.Equal(t, "proceed to onsite", result.Recommendation)
}

func TestLogActivity_PostsEvent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/interviews/iv-42/log-activity", r.URL.Path)
		var entry model.ActivityLog
		require.NoError(t, json.NewDecoder(r.Body).Decode(&entry))
		assert.Equal(t, model.EventTabHidden, entry.EventType)
		w.WriteHeader(http.StatusAccepted)
	})

	err := client.Interview("iv-42").LogActivity(context.Background(), model.ActivityLog{
		EventType: model.EventTabHidden,
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestVerifyAccess_ValidatesLocally(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	// Bad email never reaches the wire.
	err := client.VerifyAccess(context.Background(), "iv-42", model.VerifyAccessRequest{
		Email: "not-an-email", AccessCode: "ABC123",
	})
	require.Error(t, err)
	assert.False(t, called)

	// Wrong code length never reaches the wire either.
	err = client.VerifyAccess(context.Background(), "iv-42", model.VerifyAccessRequest{
		Email: "jo@example.com", AccessCode: "ABC",
	})
	require.Error(t, err)
	assert.False(t, called)
}

func TestVerifyAccess_OK(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/interviews/iv-42/verify-access", r.URL.Path)
		var body model.VerifyAccessRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "JX92KD", body.AccessCode)
		w.WriteHeader(http.StatusOK)
	})

	err := client.VerifyAccess(context.Background(), "iv-42", model.VerifyAccessRequest{
		Email: "jo@example.com", AccessCode: "JX92KD",
	})
	require.NoError(t, err)
}

func TestErrorEnvelopeDecoding(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": "INVALID_ACCESS_CODE", "message": "Access code rejected."},
		})
	})

	err := client.VerifyAccess(context.Background(), "iv-42", model.VerifyAccessRequest{
		Email: "jo@example.com", AccessCode: "JX92KD",
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrInvalidAccessCode))
	assert.Contains(t, err.Error(), "Access code rejected")
}

func TestErrorStatusFallback(t *testing.T) {
	cases := []struct {
		status int
		code   ErrCode
	}{
		{http.StatusNotFound, ErrInterviewNotFound},
		{http.StatusUnauthorized, ErrAccessDenied},
		{http.StatusForbidden, ErrAccessDenied},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusBadGateway, ErrInternal},
		{http.StatusTeapot, ErrUnknown},
	}

	for _, tc := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte("<html>gateway says no</html>"))
		})

		_, err := client.Interview("iv-42").Complete(context.Background())
		require.Error(t, err)
		assert.True(t, IsCode(err, tc.code), "status %d should map to %s", tc.status, tc.code)
	}
}
