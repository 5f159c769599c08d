package model

import "time"

// SecurityEventType enumerates the integrity events the client reports.
type SecurityEventType string

const (
	EventSessionStarted      SecurityEventType = "session_started"
	EventFullscreenExit      SecurityEventType = "fullscreen_exit"
	EventFullscreenRestored  SecurityEventType = "fullscreen_restored"
	EventDevtoolsOpen        SecurityEventType = "devtools_open"
	EventDevtoolsClosed      SecurityEventType = "devtools_closed"
	EventTabHidden           SecurityEventType = "tab_hidden"
	EventTabVisible          SecurityEventType = "tab_visible"
	EventIdleWarning         SecurityEventType = "idle_warning"
	EventInputBlocked        SecurityEventType = "input_blocked"
	EventAnswerSubmitted     SecurityEventType = "answer_submitted"
	EventInterviewCompleting SecurityEventType = "interview_completing"
	EventInterviewCompleted  SecurityEventType = "interview_completed"
	EventInterviewTerminated SecurityEventType = "interview_terminated"
)

// ActivityLog is the body of a log-activity call. Metadata is free-form;
// the engine attaches the device fingerprint and current counters to
// every entry.
type ActivityLog struct {
	EventID   string            `json:"event_id,omitempty"`
	EventType SecurityEventType `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]any    `json:"metadata,omitempty"`
}
