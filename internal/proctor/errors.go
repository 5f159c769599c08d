package proctor

import "errors"

var (
	// ErrSessionEnded is returned by pager operations after termination.
	ErrSessionEnded = errors.New("proctor: session already ended")
	// ErrSubmitInFlight rejects navigation and re-submission while an
	// answer POST is pending.
	ErrSubmitInFlight = errors.New("proctor: a submission is already in flight")
	// ErrEmptyAnswer rejects whitespace-only answers before any network
	// call is made.
	ErrEmptyAnswer = errors.New("proctor: answer must not be empty")
	// ErrIndexOutOfRange rejects navigation outside the question list.
	ErrIndexOutOfRange = errors.New("proctor: question index out of range")
	// ErrAtFirstQuestion rejects Previous at index 0.
	ErrAtFirstQuestion = errors.New("proctor: already at the first question")
	// ErrNotTerminated rejects a completion retry while the session is
	// still in progress.
	ErrNotTerminated = errors.New("proctor: session still in progress")
	// ErrCompletionInFlight rejects a retry while a completion POST is
	// already pending.
	ErrCompletionInFlight = errors.New("proctor: completion already in flight")
	// ErrCloseUnsupported is returned by shells that cannot close their
	// own window.
	ErrCloseUnsupported = errors.New("proctor: window close unsupported")
)
