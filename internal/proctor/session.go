// Package proctor implements the exam-integrity core of the AI interview:
// a per-session state machine whose five monitors (fullscreen, devtools,
// tab visibility, idle, input blocker), countdown timer, and answer pager
// all share one session state and race toward a single idempotent
// completion path.
package proctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/talentsift/interview-client/internal/model"
)

// Backend is the slice of the recruiting API the session consumes.
// *api.InterviewAPI satisfies it; tests use a recording fake.
type Backend interface {
	Questions(ctx context.Context) (*model.QuestionSet, error)
	SubmitAnswer(ctx context.Context, questionID, answer string) error
	Complete(ctx context.Context) (*model.CompletionResult, error)
	LogActivity(ctx context.Context, entry model.ActivityLog) error
}

// Session is the in-memory state of one interview attempt. It lives for
// exactly one page/process lifetime; nothing here survives a restart
// except the answers the backend has already persisted.
type Session struct {
	InterviewID     string
	JobTitle        string
	DurationMinutes int
	Questions       []model.Question

	// Answers maps question id to submitted text. Keys are only ever
	// added or overwritten by the pager, never removed.
	Answers map[string]string

	CurrentIndex         int
	Violations           int
	TabSwitchCount       int
	IdleSeconds          int
	TimeRemainingSeconds int
	DevtoolsDetected     bool

	// Terminated flips true exactly once, inside the completion
	// controller. Every handler checks it first.
	Terminated bool
}

// Bootstrap fetches the question set and builds a session resumed at the
// first unanswered question. The authorization gate (authstore record, <24h
// old) is the caller's responsibility and must pass before Bootstrap runs.
// On error no session exists and no monitors may start.
func Bootstrap(ctx context.Context, backend Backend, interviewID string) (*Session, error) {
	set, err := backend.Questions(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return newSession(interviewID, set), nil
}

func newSession(interviewID string, set *model.QuestionSet) *Session {
	sess := &Session{
		InterviewID:          interviewID,
		JobTitle:             set.JobTitle,
		DurationMinutes:      set.DurationMinutes,
		Questions:            set.Questions,
		Answers:              make(map[string]string, len(set.Questions)),
		TimeRemainingSeconds: set.DurationMinutes * 60,
	}

	// Restore server-side answers and resume at the first unanswered
	// question. All answered: stay on the last one.
	resume := len(set.Questions) - 1
	found := false
	for i, q := range set.Questions {
		if strings.TrimSpace(q.Answer) != "" {
			sess.Answers[q.ID] = q.Answer
		} else if !found {
			resume = i
			found = true
		}
	}
	sess.CurrentIndex = resume

	return sess
}

// Answered reports whether the question at index i has a cached answer.
func (s *Session) Answered(i int) bool {
	if i < 0 || i >= len(s.Questions) {
		return false
	}
	return s.Answers[s.Questions[i].ID] != ""
}
