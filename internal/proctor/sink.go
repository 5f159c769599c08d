package proctor

import "github.com/talentsift/interview-client/internal/model"

// WarningKind identifies which monitor raised a warning, so shells can
// clear the matching banner.
type WarningKind string

const (
	WarnFullscreen WarningKind = "fullscreen"
	WarnDevtools   WarningKind = "devtools"
	WarnTabHidden  WarningKind = "tab_hidden"
	WarnIdle       WarningKind = "idle"
)

// Warning is a user-facing integrity notice.
type Warning struct {
	Kind    WarningKind
	Message string
	// Violations is the counter value after the event that raised this
	// warning (strikes used out of the ceiling).
	Violations int
}

// TerminateReason is why the completion controller ran.
type TerminateReason string

const (
	ReasonCompleted        TerminateReason = "completed"
	ReasonViolationCeiling TerminateReason = "violation_ceiling"
	ReasonIdleTimeout      TerminateReason = "idle_timeout"
	ReasonTimeExpired      TerminateReason = "time_expired"
	ReasonHiddenTimeout    TerminateReason = "hidden_timeout"
)

// Outcome is the terminal report of a session. Either Result is set (the
// completion call succeeded) or Err is set and the shell must offer
// RetryCompletion — the candidate must never believe they are done while
// no completion call has landed.
type Outcome struct {
	Reason TerminateReason
	Result *model.CompletionResult
	Err    error
}

// Sink receives the engine's user-facing output. Implementations must not
// call back into the Engine from these methods: they run inside handler
// invocations that hold the session lock.
type Sink interface {
	ShowWarning(w Warning)
	ClearWarning(kind WarningKind)
	// QuestionChanged fires on every navigation and advance; draft is the
	// text to prefill (the cached answer, or empty).
	QuestionChanged(index int, q model.Question, draft string)
	SessionEnded(o Outcome)
}
