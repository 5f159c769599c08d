package proctor

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/talentsift/interview-client/internal/fingerprint"
	"github.com/talentsift/interview-client/internal/model"
)

// fakeBackend records every call and can be told to fail or block.
type fakeBackend struct {
	mu            sync.Mutex
	questions     *model.QuestionSet
	questionsErr  error
	submitErr     error
	completeErr   error
	logErr        error
	submits       []submitCall
	completeCalls int
	logs          []model.ActivityLog

	// When set, SubmitAnswer signals submitStarted and then waits for
	// submitGate before returning.
	submitGate    chan struct{}
	submitStarted chan struct{}

	// When set, LogActivity waits for logGate before returning.
	logGate chan struct{}
}

type submitCall struct {
	QuestionID string
	Answer     string
}

func (f *fakeBackend) Questions(context.Context) (*model.QuestionSet, error) {
	if f.questionsErr != nil {
		return nil, f.questionsErr
	}
	return f.questions, nil
}

func (f *fakeBackend) SubmitAnswer(_ context.Context, questionID, answer string) error {
	if f.submitStarted != nil {
		f.submitStarted <- struct{}{}
	}
	if f.submitGate != nil {
		<-f.submitGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submits = append(f.submits, submitCall{QuestionID: questionID, Answer: answer})
	return nil
}

func (f *fakeBackend) Complete(context.Context) (*model.CompletionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completeCalls++
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return &model.CompletionResult{AIScore: 82.5, Recommendation: "hire"}, nil
}

func (f *fakeBackend) LogActivity(_ context.Context, entry model.ActivityLog) error {
	if f.logGate != nil {
		<-f.logGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logErr != nil {
		return f.logErr
	}
	f.logs = append(f.logs, entry)
	return nil
}

func (f *fakeBackend) submitCalls() []submitCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]submitCall(nil), f.submits...)
}

func (f *fakeBackend) completions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completeCalls
}

func (f *fakeBackend) loggedTypes() []model.SecurityEventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]model.SecurityEventType, 0, len(f.logs))
	for _, l := range f.logs {
		types = append(types, l.EventType)
	}
	return types
}

// recordSink captures engine output.
type recordSink struct {
	mu       sync.Mutex
	warnings []Warning
	cleared  []WarningKind
	changes  []int
	outcomes []Outcome
}

func (s *recordSink) ShowWarning(w Warning) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, w)
}

func (s *recordSink) ClearWarning(kind WarningKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared = append(s.cleared, kind)
}

func (s *recordSink) QuestionChanged(index int, _ model.Question, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = append(s.changes, index)
}

func (s *recordSink) SessionEnded(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, o)
}

func (s *recordSink) allOutcomes() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Outcome(nil), s.outcomes...)
}

func (s *recordSink) allWarnings() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Warning(nil), s.warnings...)
}

// fakePlatform counts window actions.
type fakePlatform struct {
	mu              sync.Mutex
	fullscreenCalls int
	closeCalls      int
}

func (p *fakePlatform) RequestFullscreen() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fullscreenCalls++
	return nil
}

func (p *fakePlatform) CloseWindow() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCalls++
	return nil
}

func (p *fakePlatform) fullscreens() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fullscreenCalls
}

func questionSet(n int) *model.QuestionSet {
	set := &model.QuestionSet{JobTitle: "Backend Engineer", DurationMinutes: 30}
	for i := 1; i <= n; i++ {
		set.Questions = append(set.Questions, model.Question{
			ID:         fmt.Sprintf("q%d", i),
			Question:   fmt.Sprintf("Question %d", i),
			Category:   "go",
			Difficulty: "medium",
		})
	}
	return set
}

type testRig struct {
	eng      *Engine
	sess     *Session
	backend  *fakeBackend
	sink     *recordSink
	platform *fakePlatform
}

// newRig builds an unstarted engine over n fresh questions. Tests mutate
// the session or config as needed, then call rig.eng.Start().
func newRig(n int, cfg Config) *testRig {
	fb := &fakeBackend{questions: questionSet(n)}
	sess, err := Bootstrap(context.Background(), fb, "iv-1")
	if err != nil {
		panic(err)
	}
	if cfg.Detector == nil {
		cfg.Detector = DisabledDetector{}
	}
	sink := &recordSink{}
	platform := &fakePlatform{}
	fp := fingerprint.Fingerprint{UserAgent: "test", Platform: "test"}
	audit := NewAuditTrail(fb, fp, zerolog.Nop())
	eng := NewEngine(sess, fb, audit, platform, sink, cfg, zerolog.Nop())
	return &testRig{eng: eng, sess: sess, backend: fb, sink: sink, platform: platform}
}

func (r *testRig) start() *testRig {
	r.eng.Start()
	return r
}

func (r *testRig) ticks(n int) {
	for i := 0; i < n; i++ {
		r.eng.Tick()
	}
}
