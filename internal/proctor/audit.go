package proctor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/talentsift/interview-client/internal/fingerprint"
	"github.com/talentsift/interview-client/internal/model"
)

const (
	auditBufferSize   = 64
	auditPostTimeout  = 5 * time.Second
	auditDrainTimeout = 3 * time.Second
)

// AuditTrail ships security events to the backend, fire-and-forget. Events
// flow through a buffered channel into a single consumer goroutine; a full
// buffer drops the event rather than block a handler, and delivery failures
// are swallowed — logging must never affect session state or the UI.
type AuditTrail struct {
	backend Backend
	fp      fingerprint.Fingerprint
	log     zerolog.Logger

	mu     sync.Mutex
	closed bool
	ch     chan model.ActivityLog
	done   chan struct{}
}

// NewAuditTrail starts the consumer goroutine. Callers own Close.
func NewAuditTrail(backend Backend, fp fingerprint.Fingerprint, log zerolog.Logger) *AuditTrail {
	t := &AuditTrail{
		backend: backend,
		fp:      fp,
		log:     log.With().Str("component", "audit_trail").Logger(),
		ch:      make(chan model.ActivityLog, auditBufferSize),
		done:    make(chan struct{}),
	}
	go t.run()
	return t
}

// Record enqueues one event. Non-blocking; safe to call with the session
// lock held. The device fingerprint is attached to every entry.
func (t *AuditTrail) Record(event model.SecurityEventType, metadata map[string]any) {
	if metadata == nil {
		metadata = make(map[string]any, 1)
	}
	metadata["fingerprint"] = t.fp

	entry := model.ActivityLog{
		EventID:   uuid.NewString(),
		EventType: event,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	select {
	case t.ch <- entry:
	default:
		t.log.Debug().Str("event_type", string(event)).Msg("Audit buffer full, dropping event")
	}
}

func (t *AuditTrail) run() {
	defer close(t.done)

	for entry := range t.ch {
		ctx, cancel := context.WithTimeout(context.Background(), auditPostTimeout)
		if err := t.backend.LogActivity(ctx, entry); err != nil {
			// Best-effort by contract.
			t.log.Debug().Err(err).Str("event_type", string(entry.EventType)).Msg("Security event not delivered")
		}
		cancel()
	}
}

// Close stops intake and waits for the queue to drain, bounded by a
// deadline so teardown cannot hang on a dead backend.
func (t *AuditTrail) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.ch)
	t.mu.Unlock()

	select {
	case <-t.done:
	case <-time.After(auditDrainTimeout):
		t.log.Warn().Msg("Audit drain timed out, remaining events lost")
	}
}
