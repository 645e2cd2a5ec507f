// Package audit keeps a trail of payment decisions. Services emit events
// through a Trail without blocking; a background worker drains the channel
// into a store.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Actions recorded on the trail.
const (
	ActionInvoiceProcessed = "invoice_processed"
	ActionPaymentExecuted  = "payment_executed"
	ActionThreatReported   = "threat_reported"
	ActionMandateCreated   = "mandate_created"
	ActionMandateDeleted   = "mandate_deleted"
)

// Event is one audited action.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	CompanyID string    `json:"companyId"`
	Subject   string    `json:"subject"`
	Action    string    `json:"action"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context, companyID string, limit int) ([]Event, error)
}

// Trail accepts events from domain services. Emission never blocks: when
// the inbox is full the event is dropped with a warning, a deliberate trade
// against stalling payment processing. A nil *Trail discards everything.
type Trail struct {
	inbox  chan Event
	logger *slog.Logger
	now    func() time.Time
}

// NewTrail creates a trail with the given inbox capacity.
func NewTrail(capacity int, logger *slog.Logger) *Trail {
	if capacity <= 0 {
		capacity = 256
	}
	return &Trail{
		inbox:  make(chan Event, capacity),
		logger: logger,
		now:    time.Now,
	}
}

// Record queues an event, stamping the time if unset.
func (t *Trail) Record(ctx context.Context, event Event) {
	if t == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = t.now().UTC()
	}
	select {
	case t.inbox <- event:
	default:
		t.logger.WarnContext(ctx, "audit inbox full, event dropped",
			"action", event.Action, "subject", event.Subject)
	}
}

// Events exposes the inbox for the worker.
func (t *Trail) Events() <-chan Event {
	return t.inbox
}

// Worker drains a trail into a store.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, trail *Trail, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: trail.Events(), logger: logger}
}

// Run consumes events until ctx is cancelled. Store failures are logged,
// not fatal: the trail is advisory, the ledgers are the source of truth.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "append audit event",
					"action", event.Action, "error", err.Error())
			}
		}
	}
}

// MemoryStore keeps the most recent events in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
	max    int
}

// NewMemory creates a store that retains at most max events, oldest dropped
// first.
func NewMemory(max int) *MemoryStore {
	if max <= 0 {
		max = 1000
	}
	return &MemoryStore{max: max}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if len(s.events) > s.max {
		s.events = s.events[len(s.events)-s.max:]
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context, companyID string, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	out := make([]Event, 0, limit)
	// Newest first.
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		if companyID != "" && s.events[i].CompanyID != companyID {
			continue
		}
		out = append(out, s.events[i])
	}
	return out, nil
}
