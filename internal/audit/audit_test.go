package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrailStampsAndDelivers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	trail := NewTrail(4, logger)

	trail.Record(context.Background(), Event{
		CompanyID: "acme_corp",
		Subject:   "inv_1",
		Action:    ActionInvoiceProcessed,
		Decision:  "APPROVE",
	})

	select {
	case event := <-trail.Events():
		assert.False(t, event.Timestamp.IsZero())
		assert.Equal(t, ActionInvoiceProcessed, event.Action)
	default:
		t.Fatal("expected a queued event")
	}
}

func TestTrailDropsWhenFull(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	trail := NewTrail(1, logger)

	trail.Record(context.Background(), Event{Subject: "first"})
	trail.Record(context.Background(), Event{Subject: "second"})

	event := <-trail.Events()
	assert.Equal(t, "first", event.Subject)
	select {
	case <-trail.Events():
		t.Fatal("second event should have been dropped")
	default:
	}
}

func TestNilTrailIsNoOp(t *testing.T) {
	var trail *Trail
	trail.Record(context.Background(), Event{Subject: "ignored"})
}

func TestWorkerPersistsEvents(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	trail := NewTrail(4, logger)
	store := NewMemory(10)
	worker := NewWorker(store, trail, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()

	trail.Record(ctx, Event{CompanyID: "acme_corp", Subject: "inv_1", Action: ActionInvoiceProcessed})
	trail.Record(ctx, Event{CompanyID: "globex", Subject: "inv_2", Action: ActionPaymentExecuted})

	require.Eventually(t, func() bool {
		events, err := store.List(ctx, "", 10)
		return err == nil && len(events) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	acme, err := store.List(context.Background(), "acme_corp", 10)
	require.NoError(t, err)
	require.Len(t, acme, 1)
	assert.Equal(t, "inv_1", acme[0].Subject)
}

func TestMemoryStoreEvictsOldest(t *testing.T) {
	store := NewMemory(2)
	ctx := context.Background()
	for _, subject := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append(ctx, Event{Subject: subject}))
	}
	events, err := store.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "c", events[0].Subject, "newest first")
	assert.Equal(t, "b", events[1].Subject)
}
