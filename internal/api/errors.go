package api

import (
	"errors"
	"fmt"
)

// ErrCode is a typed error code enum for consistent backend error
// identification on the client.
type ErrCode string

const (
	// ─── Access ────────────────────────────────────────────────────────
	ErrAccessDenied      ErrCode = "ACCESS_DENIED"
	ErrInvalidAccessCode ErrCode = "INVALID_ACCESS_CODE"

	// ─── Interview lifecycle ───────────────────────────────────────────
	ErrInterviewNotFound  ErrCode = "INTERVIEW_NOT_FOUND"
	ErrInterviewClosed    ErrCode = "INTERVIEW_CLOSED"
	ErrInterviewCompleted ErrCode = "INTERVIEW_ALREADY_COMPLETED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"

	// ─── Transport / server ────────────────────────────────────────────
	ErrRateLimited ErrCode = "RATE_LIMIT_EXCEEDED"
	ErrInternal    ErrCode = "INTERNAL_ERROR"
	ErrUnknown     ErrCode = "UNKNOWN"
)

// Error is a non-2xx backend response decoded into the standard
// {error: {code, message}} envelope, with a fallback to the raw body.
type Error struct {
	Status  int
	Code    ErrCode
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s (%s, HTTP %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("backend: %s (HTTP %d)", e.Code, e.Status)
}

// IsCode reports whether err is a backend Error carrying the given code.
func IsCode(err error, code ErrCode) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
