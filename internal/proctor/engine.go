package proctor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/talentsift/interview-client/internal/model"
)

// Integrity thresholds. All timing is second-granular and driven by Tick,
// which keeps the engine deterministic under test.
const (
	DefaultViolationCeiling       = 3
	DefaultIdleWarningSeconds     = 90
	DefaultIdleCeilingSeconds     = 120
	DefaultHiddenGraceSeconds     = 10
	DefaultWarningHideSeconds     = 5
	DefaultFullscreenRetrySeconds = 2
	DefaultVisibleClearSeconds    = 2
	DefaultDevtoolsGapPixels      = 160
)

// Config tunes the integrity monitors. The zero value means defaults.
type Config struct {
	ViolationCeiling       int
	IdleWarningSeconds     int
	IdleCeilingSeconds     int
	HiddenGraceSeconds     int
	WarningHideSeconds     int
	FullscreenRetrySeconds int
	VisibleClearSeconds    int
	Detector               Detector
}

func (c *Config) applyDefaults() {
	if c.ViolationCeiling <= 0 {
		c.ViolationCeiling = DefaultViolationCeiling
	}
	if c.IdleWarningSeconds <= 0 {
		c.IdleWarningSeconds = DefaultIdleWarningSeconds
	}
	if c.IdleCeilingSeconds <= 0 {
		c.IdleCeilingSeconds = DefaultIdleCeilingSeconds
	}
	if c.HiddenGraceSeconds <= 0 {
		c.HiddenGraceSeconds = DefaultHiddenGraceSeconds
	}
	if c.WarningHideSeconds <= 0 {
		c.WarningHideSeconds = DefaultWarningHideSeconds
	}
	if c.FullscreenRetrySeconds <= 0 {
		c.FullscreenRetrySeconds = DefaultFullscreenRetrySeconds
	}
	if c.VisibleClearSeconds <= 0 {
		c.VisibleClearSeconds = DefaultVisibleClearSeconds
	}
	if c.Detector == nil {
		c.Detector = WindowGapDetector{}
	}
}

// ViolationKind tags which monitor charged a strike. All kinds weigh the
// same against the ceiling; the audit trail carries the kind so the
// backend can weight them after the fact.
type ViolationKind string

const (
	ViolationFullscreenExit ViolationKind = "fullscreen_exit"
	ViolationDevtools       ViolationKind = "devtools_open"
	ViolationTabSwitch      ViolationKind = "tab_switch"
)

// Engine runs one proctored interview session. Handler methods are safe to
// call from any goroutine: each takes the session lock, runs to completion,
// and re-checks the terminated guard first, which makes violation counting
// and the termination decision atomic per event — the lock stands in for
// the single-threaded event loop the browser gives a web client for free.
type Engine struct {
	cfg      Config
	backend  Backend
	audit    *AuditTrail
	platform Platform
	sink     Sink
	log      zerolog.Logger

	mu      sync.Mutex
	sess    *Session
	running bool

	// tick is seconds since Start. All deadlines below are tick values;
	// zero means unarmed.
	tick              int64
	hiddenDeadline    int64
	fullscreenRetryAt int64
	idleWarnClearAt   int64
	tabWarnClearAt    int64

	metrics      WindowMetrics
	haveMetrics  bool
	devtoolsOpen bool
	fullscreen   bool
	hidden       bool

	draft      string
	submitting bool

	completing bool
	completed  bool
	lastReason TerminateReason
	lastResult *model.CompletionResult
}

// NewEngine wires an engine for a bootstrapped session. Monitors stay
// dormant until Start.
func NewEngine(sess *Session, backend Backend, audit *AuditTrail, platform Platform, sink Sink, cfg Config, log zerolog.Logger) *Engine {
	cfg.applyDefaults()
	return &Engine{
		cfg:      cfg,
		backend:  backend,
		audit:    audit,
		platform: platform,
		sink:     sink,
		log:      log.With().Str("component", "proctor_engine").Str("interview_id", sess.InterviewID).Logger(),
		sess:     sess,
	}
}

// Start arms the monitors and requests fullscreen. Must only run once the
// question set is non-empty — bootstrap failures never reach here.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running || e.sess.Terminated {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.auditLocked(model.EventSessionStarted, map[string]any{
		"job_title":      e.sess.JobTitle,
		"question_count": len(e.sess.Questions),
		"resumed_at":     e.sess.CurrentIndex,
	})
	e.mu.Unlock()

	e.log.Info().Str("job_title", e.sess.JobTitle).Int("questions", len(e.sess.Questions)).Msg("Session started")

	if err := e.platform.RequestFullscreen(); err != nil {
		e.log.Warn().Err(err).Msg("Fullscreen entry refused")
	}
}

// Stop tears the engine down on navigation away. Any timer or listener
// callback that fires afterwards becomes a no-op, and the audit queue is
// drained. Stop does not complete the interview.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()

	e.audit.Close()
}

// ─── Timers ─────────────────────────────────────────────────────────────

// Tick advances all second-granular state: the interview countdown, idle
// accrual, the hidden grace deadline, devtools polling, the fullscreen
// re-entry delay, and warning auto-hides. One call per second.
func (e *Engine) Tick() {
	e.mu.Lock()
	if !e.running || e.sess.Terminated {
		e.mu.Unlock()
		return
	}
	e.tick++

	var reason TerminateReason
	retryFullscreen := false

	// Countdown. Zero terminates regardless of violations.
	if e.sess.TimeRemainingSeconds > 0 {
		e.sess.TimeRemainingSeconds--
		if e.sess.TimeRemainingSeconds == 0 {
			reason = ReasonTimeExpired
		}
	}

	// Idle accrual. ActivityObserved resets the counter between ticks.
	e.sess.IdleSeconds++
	if e.sess.IdleSeconds == e.cfg.IdleWarningSeconds {
		e.sink.ShowWarning(Warning{
			Kind:       WarnIdle,
			Message:    "Are you still there? The interview will auto-submit if you stay inactive.",
			Violations: e.sess.Violations,
		})
		e.auditLocked(model.EventIdleWarning, nil)
		e.idleWarnClearAt = e.tick + int64(e.cfg.WarningHideSeconds)
	}
	if e.sess.IdleSeconds >= e.cfg.IdleCeilingSeconds && reason == "" {
		reason = ReasonIdleTimeout
	}

	// Hidden grace deadline: candidate never came back.
	if e.hiddenDeadline != 0 && e.tick >= e.hiddenDeadline && reason == "" {
		reason = ReasonHiddenTimeout
	}

	// Deferred warning clears.
	if e.idleWarnClearAt != 0 && e.tick >= e.idleWarnClearAt {
		e.idleWarnClearAt = 0
		e.sink.ClearWarning(WarnIdle)
	}
	if e.tabWarnClearAt != 0 && e.tick >= e.tabWarnClearAt {
		e.tabWarnClearAt = 0
		e.sink.ClearWarning(WarnTabHidden)
	}

	// Fullscreen re-entry after the post-violation delay.
	if e.fullscreenRetryAt != 0 && e.tick >= e.fullscreenRetryAt {
		e.fullscreenRetryAt = 0
		retryFullscreen = true
	}

	// Devtools poll against the last known geometry.
	if reason == "" && e.haveMetrics && e.checkDevtoolsLocked() {
		reason = ReasonViolationCeiling
	}

	e.mu.Unlock()

	if retryFullscreen {
		if err := e.platform.RequestFullscreen(); err != nil {
			e.log.Warn().Err(err).Msg("Fullscreen re-entry refused")
		}
	}
	if reason != "" {
		e.terminate(reason)
	}
}

// ─── Integrity watchers ─────────────────────────────────────────────────

// FullscreenChanged handles fullscreen enter/exit events. Every exit is a
// strike; below the ceiling the engine warns and re-enters fullscreen
// after a short delay, at the ceiling it terminates instead of retrying.
func (e *Engine) FullscreenChanged(active bool) {
	e.mu.Lock()
	if !e.running || e.sess.Terminated {
		e.mu.Unlock()
		return
	}

	var reason TerminateReason
	if active {
		e.fullscreen = true
		e.fullscreenRetryAt = 0
		e.auditLocked(model.EventFullscreenRestored, nil)
		e.sink.ClearWarning(WarnFullscreen)
	} else {
		e.fullscreen = false
		if e.recordViolationLocked(ViolationFullscreenExit, model.EventFullscreenExit, WarnFullscreen,
			"Fullscreen is required. Leaving it counts as a violation.") {
			reason = ReasonViolationCeiling
		} else {
			e.fullscreenRetryAt = e.tick + int64(e.cfg.FullscreenRetrySeconds)
		}
	}
	e.mu.Unlock()

	if reason != "" {
		e.terminate(reason)
	}
}

// VisibilityChanged handles the tab going hidden or visible. Hiding is a
// strike and starts the grace deadline; returning in time cancels it and
// clears the warning shortly after.
func (e *Engine) VisibilityChanged(hidden bool) {
	e.mu.Lock()
	if !e.running || e.sess.Terminated {
		e.mu.Unlock()
		return
	}
	if hidden == e.hidden {
		e.mu.Unlock()
		return
	}

	var reason TerminateReason
	if hidden {
		e.hidden = true
		e.sess.TabSwitchCount++
		if e.recordViolationLocked(ViolationTabSwitch, model.EventTabHidden, WarnTabHidden,
			"Stay on this tab. Leaving it counts as a violation.") {
			reason = ReasonViolationCeiling
		} else {
			e.hiddenDeadline = e.tick + int64(e.cfg.HiddenGraceSeconds)
		}
	} else {
		e.hidden = false
		e.hiddenDeadline = 0
		e.tabWarnClearAt = e.tick + int64(e.cfg.VisibleClearSeconds)
		e.auditLocked(model.EventTabVisible, nil)
	}
	e.mu.Unlock()

	if reason != "" {
		e.terminate(reason)
	}
}

// WindowResized feeds fresh geometry to the devtools detector. The same
// check also runs on every tick.
func (e *Engine) WindowResized(m WindowMetrics) {
	e.mu.Lock()
	if !e.running || e.sess.Terminated {
		e.mu.Unlock()
		return
	}
	e.metrics = m
	e.haveMetrics = true

	var reason TerminateReason
	if e.checkDevtoolsLocked() {
		reason = ReasonViolationCeiling
	}
	e.mu.Unlock()

	if reason != "" {
		e.terminate(reason)
	}
}

// checkDevtoolsLocked evaluates the detector against the current metrics
// and handles open/close transitions. A closed→open transition is a
// strike; open→closed is logged only, violations never decrease.
// Returns true when the ceiling was crossed. Caller holds e.mu.
func (e *Engine) checkDevtoolsLocked() bool {
	open := e.cfg.Detector.Open(e.metrics)
	switch {
	case open && !e.devtoolsOpen:
		e.devtoolsOpen = true
		e.sess.DevtoolsDetected = true
		return e.recordViolationLocked(ViolationDevtools, model.EventDevtoolsOpen, WarnDevtools,
			"Developer tools detected. Close them immediately.")
	case !open && e.devtoolsOpen:
		e.devtoolsOpen = false
		e.auditLocked(model.EventDevtoolsClosed, nil)
	}
	return false
}

// ActivityObserved resets the idle counter on qualifying user activity.
// Every ActivityKind qualifies; the parameter exists for shells that want
// to throttle high-frequency kinds before forwarding.
func (e *Engine) ActivityObserved(_ ActivityKind) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running || e.sess.Terminated {
		return
	}
	e.sess.IdleSeconds = 0
	if e.idleWarnClearAt != 0 {
		e.idleWarnClearAt = 0
		e.sink.ClearWarning(WarnIdle)
	}
}

// FilterInput is the input blocker: it decides whether a user input action
// is allowed and audits the ones it suppresses. It never charges strikes.
// The policy: context menu is blocked everywhere; clipboard, select-all,
// and devtools/print/save shortcuts are blocked outside the answer field;
// text selection is allowed in the answer field and input controls only.
func (e *Engine) FilterInput(action InputAction, target InputTarget) bool {
	if allowInput(action, target) {
		return true
	}

	e.mu.Lock()
	if e.running && !e.sess.Terminated {
		e.auditLocked(model.EventInputBlocked, map[string]any{
			"action": string(action),
			"target": string(target),
		})
	}
	e.mu.Unlock()
	return false
}

func allowInput(action InputAction, target InputTarget) bool {
	switch action {
	case InputContextMenu:
		return false
	case InputCopy, InputCut, InputPaste, InputSelectAll,
		InputShortcutDevtools, InputShortcutPrint, InputShortcutSave:
		return target == TargetAnswerField
	case InputTextSelect:
		return target == TargetAnswerField || target == TargetInputControl
	default:
		return true
	}
}

// recordViolationLocked charges one strike, audits it, and reports whether
// the ceiling was crossed. Below the ceiling it shows the monitor's
// warning; at the ceiling the caller must terminate instead of its normal
// warning/retry behavior. Caller holds e.mu, which makes the
// increment-then-check atomic per event.
func (e *Engine) recordViolationLocked(kind ViolationKind, event model.SecurityEventType, warn WarningKind, msg string) bool {
	e.sess.Violations++
	e.auditLocked(event, map[string]any{"violation_kind": string(kind)})
	e.log.Warn().Str("kind", string(kind)).Int("violations", e.sess.Violations).Msg("Integrity violation")

	if e.sess.Violations >= e.cfg.ViolationCeiling {
		return true
	}
	e.sink.ShowWarning(Warning{Kind: warn, Message: msg, Violations: e.sess.Violations})
	return false
}

// auditLocked emits a security event stamped with the current counters and
// question index. Caller holds e.mu; Record never blocks.
func (e *Engine) auditLocked(event model.SecurityEventType, extra map[string]any) {
	md := map[string]any{
		"violations":       e.sess.Violations,
		"tab_switch_count": e.sess.TabSwitchCount,
		"idle_seconds":     e.sess.IdleSeconds,
		"question_index":   e.sess.CurrentIndex,
	}
	for k, v := range extra {
		md[k] = v
	}
	e.audit.Record(event, md)
}

// ─── Answer pager ───────────────────────────────────────────────────────

// UpdateDraft caches the in-progress answer text so an auto-triggered
// termination can save it. Call on every input change.
func (e *Engine) UpdateDraft(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess.Terminated {
		return
	}
	e.draft = text
}

// SubmitAnswer validates, persists, and caches the answer for the current
// question, then advances — or hands off to the completion controller when
// this was the last question. Navigation is rejected while the POST is in
// flight; on failure the index and answer cache are untouched and the
// candidate may resubmit.
func (e *Engine) SubmitAnswer(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)

	e.mu.Lock()
	if e.sess.Terminated || !e.running {
		e.mu.Unlock()
		return ErrSessionEnded
	}
	if e.submitting {
		e.mu.Unlock()
		return ErrSubmitInFlight
	}
	if trimmed == "" {
		e.mu.Unlock()
		return ErrEmptyAnswer
	}
	q := e.sess.Questions[e.sess.CurrentIndex]
	e.submitting = true
	e.draft = text
	e.mu.Unlock()

	err := e.backend.SubmitAnswer(ctx, q.ID, trimmed)

	e.mu.Lock()
	e.submitting = false
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("submit answer: %w", err)
	}
	if e.sess.Terminated {
		// Terminated while the POST was in flight. The answer is saved
		// server-side; the completion path already ran.
		e.mu.Unlock()
		return ErrSessionEnded
	}

	e.sess.Answers[q.ID] = trimmed
	e.draft = ""
	e.auditLocked(model.EventAnswerSubmitted, map[string]any{
		"question_id":   q.ID,
		"answer_length": len(trimmed),
	})

	if e.sess.CurrentIndex < len(e.sess.Questions)-1 {
		e.sess.CurrentIndex++
		next := e.sess.Questions[e.sess.CurrentIndex]
		e.draft = e.sess.Answers[next.ID]
		e.sink.QuestionChanged(e.sess.CurrentIndex, next, e.draft)
		e.mu.Unlock()
		return nil
	}

	e.mu.Unlock()
	e.terminate(ReasonCompleted)
	return nil
}

// NavigateTo jumps to any question. The current in-progress text is
// abandoned without validation or submission; the target's cached answer
// (or empty) becomes the new draft.
func (e *Engine) NavigateTo(i int) (model.Question, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess.Terminated || !e.running {
		return model.Question{}, "", ErrSessionEnded
	}
	if e.submitting {
		return model.Question{}, "", ErrSubmitInFlight
	}
	if i < 0 || i >= len(e.sess.Questions) {
		return model.Question{}, "", ErrIndexOutOfRange
	}

	e.sess.CurrentIndex = i
	q := e.sess.Questions[i]
	e.draft = e.sess.Answers[q.ID]
	e.sink.QuestionChanged(i, q, e.draft)
	return q, e.draft, nil
}

// Previous is a jump to the preceding question, rejected at index 0.
func (e *Engine) Previous() (model.Question, string, error) {
	e.mu.Lock()
	idx := e.sess.CurrentIndex
	e.mu.Unlock()
	if idx == 0 {
		return model.Question{}, "", ErrAtFirstQuestion
	}
	return e.NavigateTo(idx - 1)
}

// ─── Completion controller ──────────────────────────────────────────────

// terminate is the single path by which a session ends. The terminated
// flag is checked-and-set under the lock, so however many triggers race
// here — ceiling breach, idle ceiling, time zero, grace timeout, last
// answer — the completion call runs at most once.
func (e *Engine) terminate(reason TerminateReason) {
	e.mu.Lock()
	if e.sess.Terminated {
		e.mu.Unlock()
		return
	}
	e.sess.Terminated = true
	e.lastReason = reason
	e.completing = true

	// Capture any unsaved non-empty draft for the current question.
	var pendingID string
	pendingText := strings.TrimSpace(e.draft)
	if pendingText != "" {
		q := e.sess.Questions[e.sess.CurrentIndex]
		if e.sess.Answers[q.ID] != pendingText {
			pendingID = q.ID
		}
	}

	if reason != ReasonCompleted {
		e.auditLocked(model.EventInterviewTerminated, map[string]any{"reason": string(reason)})
	}
	e.mu.Unlock()

	e.log.Info().Str("reason", string(reason)).Msg("Completing interview")

	ctx := context.Background()

	// (a) Flush the pending answer, best-effort. Auto-submit scenarios
	// must reach the completion call even when this save fails.
	if pendingID != "" {
		if err := e.backend.SubmitAnswer(ctx, pendingID, pendingText); err != nil {
			e.log.Warn().Err(err).Msg("Pending answer not saved during completion")
		} else {
			e.mu.Lock()
			e.sess.Answers[pendingID] = pendingText
			e.auditLocked(model.EventAnswerSubmitted, map[string]any{
				"question_id":   pendingID,
				"answer_length": len(pendingText),
				"auto_flush":    true,
			})
			e.mu.Unlock()
		}
	}

	// (b) Aggregate counters go out before the completion call so the
	// backend has them even if (c) fails.
	e.mu.Lock()
	e.auditLocked(model.EventInterviewCompleting, map[string]any{
		"reason":            string(reason),
		"devtools_detected": e.sess.DevtoolsDetected,
	})
	e.mu.Unlock()

	// (c) The one completion call.
	result, err := e.backend.Complete(ctx)

	e.mu.Lock()
	e.completing = false
	if err != nil {
		e.mu.Unlock()
		e.log.Error().Err(err).Msg("Completion call failed")
		// The session stays terminated — no second automatic attempt —
		// but the shell must show a retry, never a false success.
		e.sink.SessionEnded(Outcome{Reason: reason, Err: err})
		return
	}
	e.completed = true
	e.lastResult = result
	e.auditLocked(model.EventInterviewCompleted, map[string]any{
		"ai_score":       result.AIScore,
		"recommendation": result.Recommendation,
	})
	e.mu.Unlock()

	e.sink.SessionEnded(Outcome{Reason: reason, Result: result})

	if err := e.platform.CloseWindow(); err != nil {
		e.log.Debug().Err(err).Msg("Window close refused, completion view stays up")
	}
}

// RetryCompletion re-runs only the completion call after a failed
// termination. The terminated guard stays set throughout; this is the
// one manual path past it.
func (e *Engine) RetryCompletion(ctx context.Context) error {
	e.mu.Lock()
	if !e.sess.Terminated {
		e.mu.Unlock()
		return ErrNotTerminated
	}
	if e.completed {
		e.mu.Unlock()
		return nil
	}
	if e.completing {
		e.mu.Unlock()
		return ErrCompletionInFlight
	}
	e.completing = true
	reason := e.lastReason
	e.mu.Unlock()

	result, err := e.backend.Complete(ctx)

	e.mu.Lock()
	e.completing = false
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("complete interview: %w", err)
	}
	e.completed = true
	e.lastResult = result
	e.auditLocked(model.EventInterviewCompleted, map[string]any{
		"ai_score":       result.AIScore,
		"recommendation": result.Recommendation,
		"retried":        true,
	})
	e.mu.Unlock()

	e.sink.SessionEnded(Outcome{Reason: reason, Result: result})

	if err := e.platform.CloseWindow(); err != nil {
		e.log.Debug().Err(err).Msg("Window close refused, completion view stays up")
	}
	return nil
}

// ─── State access ───────────────────────────────────────────────────────

// Snapshot is a consistent read of the session counters for shells and
// tests.
type Snapshot struct {
	JobTitle             string
	QuestionCount        int
	CurrentIndex         int
	AnsweredCount        int
	Violations           int
	TabSwitchCount       int
	IdleSeconds          int
	TimeRemainingSeconds int
	DevtoolsDetected     bool
	Terminated           bool
	Completed            bool
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		JobTitle:             e.sess.JobTitle,
		QuestionCount:        len(e.sess.Questions),
		CurrentIndex:         e.sess.CurrentIndex,
		AnsweredCount:        len(e.sess.Answers),
		Violations:           e.sess.Violations,
		TabSwitchCount:       e.sess.TabSwitchCount,
		IdleSeconds:          e.sess.IdleSeconds,
		TimeRemainingSeconds: e.sess.TimeRemainingSeconds,
		DevtoolsDetected:     e.sess.DevtoolsDetected,
		Terminated:           e.sess.Terminated,
		Completed:            e.completed,
	}
}

// CurrentQuestion returns the question under the cursor and its draft text.
func (e *Engine) CurrentQuestion() (int, model.Question, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.CurrentIndex, e.sess.Questions[e.sess.CurrentIndex], e.draft
}

// Result returns the completion result once the session completed.
func (e *Engine) Result() *model.CompletionResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastResult
}
