// Package api is the HTTP client for the interview backend. The client
// covers the five endpoints the proctored session consumes: question
// delivery, answer submission, completion, security-event logging, and the
// pre-session access verification.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/talentsift/interview-client/internal/model"
	"github.com/talentsift/interview-client/internal/validator"
)

// Client talks to the recruiting backend over HTTPS JSON.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a Client rooted at baseURL (no trailing slash needed).
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "api_client").Logger(),
	}
}

// VerifyAccess exchanges an email + 6-char access code for interview entry.
// Used by the login step only; the session itself gates on the local record
// the login step writes afterwards.
func (c *Client) VerifyAccess(ctx context.Context, interviewID string, req model.VerifyAccessRequest) error {
	if err := validator.Struct(req); err != nil {
		return fmt.Errorf("verify access: %w", err)
	}
	path := fmt.Sprintf("/interviews/%s/verify-access", interviewID)
	return c.do(ctx, http.MethodPost, path, req, nil)
}

// Interview binds the client to one interview id.
func (c *Client) Interview(id string) *InterviewAPI {
	return &InterviewAPI{c: c, id: id}
}

// InterviewAPI exposes the per-interview endpoints.
type InterviewAPI struct {
	c  *Client
	id string
}

// ID returns the bound interview id.
func (a *InterviewAPI) ID() string { return a.id }

// Questions fetches the question set plus any previously submitted answers.
// The payload is validated before it is handed to the session: a malformed
// bootstrap response must halt the session, not corrupt it.
func (a *InterviewAPI) Questions(ctx context.Context) (*model.QuestionSet, error) {
	var set model.QuestionSet
	path := fmt.Sprintf("/interviews/%s/questions", a.id)
	if err := a.c.do(ctx, http.MethodGet, path, nil, &set); err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	if err := validator.Struct(&set); err != nil {
		return nil, fmt.Errorf("question payload: %w", err)
	}
	return &set, nil
}

// SubmitAnswer persists one answer keyed by question id. The backend treats
// resubmission of the same question as last-write-wins.
func (a *InterviewAPI) SubmitAnswer(ctx context.Context, questionID, answer string) error {
	path := fmt.Sprintf("/interviews/%s/submit-answer", a.id)
	body := model.SubmitAnswerRequest{QuestionID: questionID, Answer: answer}
	if err := a.c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("submit answer: %w", err)
	}
	return nil
}

// Complete finalizes the interview and returns the AI evaluation.
func (a *InterviewAPI) Complete(ctx context.Context) (*model.CompletionResult, error) {
	var result model.CompletionResult
	path := fmt.Sprintf("/interviews/%s/complete", a.id)
	if err := a.c.do(ctx, http.MethodPost, path, struct{}{}, &result); err != nil {
		return nil, fmt.Errorf("complete interview: %w", err)
	}
	return &result, nil
}

// LogActivity reports one security event. Callers treat this as
// fire-and-forget; the error return exists for the audit trail's debug log.
func (a *InterviewAPI) LogActivity(ctx context.Context, entry model.ActivityLog) error {
	path := fmt.Sprintf("/interviews/%s/log-activity", a.id)
	return a.c.do(ctx, http.MethodPost, path, entry, nil)
}

// errorEnvelope mirrors the backend's response envelope for failures.
type errorEnvelope struct {
	Error *struct {
		Code    ErrCode `json:"code"`
		Message string  `json:"message"`
	} `json:"error"`
}

// do runs one JSON round trip. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) decodeError(status int, raw []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil && env.Error.Code != "" {
		return &Error{Status: status, Code: env.Error.Code, Message: env.Error.Message}
	}

	// Non-envelope body (proxy error page, empty body). Map the status so
	// callers can still branch on a code.
	code := ErrUnknown
	switch {
	case status == http.StatusNotFound:
		code = ErrInterviewNotFound
	case status == http.StatusForbidden || status == http.StatusUnauthorized:
		code = ErrAccessDenied
	case status == http.StatusTooManyRequests:
		code = ErrRateLimited
	case status >= 500:
		code = ErrInternal
	}
	c.log.Debug().Int("status", status).Int("body_bytes", len(raw)).Msg("Non-envelope error response")
	return &Error{Status: status, Code: code}
}
