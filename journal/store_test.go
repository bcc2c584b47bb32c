package journal_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dutchfall-xyz/go-dutchfall/journal"
)

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func() journal.Store {
		return journal.NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, func() journal.Store {
		store, err := journal.NewSQLiteStore(":memory:")
		if err != nil {
			t.Fatalf("failed to create sqlite store: %v", err)
		}
		return store
	})
}

func runStoreTests(t *testing.T, newStore func() journal.Store) {
	t.Run("AppendAndRead", func(t *testing.T) {
		store := newStore()
		defer store.Close()
		ctx := context.Background()

		event1, _ := journal.NewEvent("auction-1", "initialized", map[string]string{"reserve": "1000"})
		event2, _ := journal.NewEvent("auction-1", "settled", map[string]string{"price": "1500"})

		version, err := store.Append(ctx, "auction-1", -1, []*journal.Event{event1})
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if version != 0 {
			t.Errorf("expected version 0, got %d", version)
		}

		version, err = store.Append(ctx, "auction-1", 0, []*journal.Event{event2})
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if version != 1 {
			t.Errorf("expected version 1, got %d", version)
		}

		events, err := store.Read(ctx, "auction-1", 0)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		if events[0].Type != "initialized" {
			t.Errorf("expected type initialized, got %s", events[0].Type)
		}
		if events[1].Type != "settled" {
			t.Errorf("expected type settled, got %s", events[1].Type)
		}

		var payload map[string]string
		if err := events[1].Decode(&payload); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if payload["price"] != "1500" {
			t.Errorf("payload price = %q, want 1500", payload["price"])
		}
	})

	t.Run("ConcurrencyConflict", func(t *testing.T) {
		store := newStore()
		defer store.Close()
		ctx := context.Background()

		event1, _ := journal.NewEvent("auction-1", "initialized", nil)
		event2, _ := journal.NewEvent("auction-1", "settled", nil)

		if _, err := store.Append(ctx, "auction-1", -1, []*journal.Event{event1}); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		// Wrong expected version must fail without writing.
		_, err := store.Append(ctx, "auction-1", 5, []*journal.Event{event2})
		if !errors.Is(err, journal.ErrConcurrencyConflict) {
			t.Errorf("expected concurrency conflict, got: %v", err)
		}

		if _, err := store.Append(ctx, "auction-1", 0, []*journal.Event{event2}); err != nil {
			t.Errorf("append with correct version failed: %v", err)
		}
	})

	t.Run("StreamVersion", func(t *testing.T) {
		store := newStore()
		defer store.Close()
		ctx := context.Background()

		version, err := store.StreamVersion(ctx, "auction-1")
		if err != nil {
			t.Fatalf("stream version failed: %v", err)
		}
		if version != -1 {
			t.Errorf("expected version -1 for empty stream, got %d", version)
		}

		event, _ := journal.NewEvent("auction-1", "initialized", nil)
		if _, err := store.Append(ctx, "auction-1", -1, []*journal.Event{event}); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		version, err = store.StreamVersion(ctx, "auction-1")
		if err != nil {
			t.Fatalf("stream version failed: %v", err)
		}
		if version != 0 {
			t.Errorf("expected version 0, got %d", version)
		}
	})

	t.Run("ReadFromVersion", func(t *testing.T) {
		store := newStore()
		defer store.Close()
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			event, _ := journal.NewEvent("auction-1", "settled", i)
			if _, err := store.Append(ctx, "auction-1", i-1, []*journal.Event{event}); err != nil {
				t.Fatalf("append failed: %v", err)
			}
		}

		events, err := store.Read(ctx, "auction-1", 1)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		if events[0].Version != 1 {
			t.Errorf("expected first event version 1, got %d", events[0].Version)
		}
	})

	t.Run("ReadAllWithFilter", func(t *testing.T) {
		store := newStore()
		defer store.Close()
		ctx := context.Background()

		event1, _ := journal.NewEvent("auction-1", "initialized", nil)
		event2, _ := journal.NewEvent("auction-1", "settled", nil)
		event3, _ := journal.NewEvent("auction-2", "initialized", nil)

		store.Append(ctx, "auction-1", -1, []*journal.Event{event1, event2})
		store.Append(ctx, "auction-2", -1, []*journal.Event{event3})

		events, err := store.ReadAll(ctx, journal.Filter{Types: []string{"initialized"}})
		if err != nil {
			t.Fatalf("read all failed: %v", err)
		}
		if len(events) != 2 {
			t.Errorf("expected 2 initialized events, got %d", len(events))
		}

		events, err = store.ReadAll(ctx, journal.Filter{StreamID: "auction-1"})
		if err != nil {
			t.Fatalf("read all failed: %v", err)
		}
		if len(events) != 2 {
			t.Errorf("expected 2 events in auction-1, got %d", len(events))
		}
	})

	t.Run("EmptyAppend", func(t *testing.T) {
		store := newStore()
		defer store.Close()

		_, err := store.Append(context.Background(), "auction-1", -1, nil)
		if !errors.Is(err, journal.ErrNoEvents) {
			t.Errorf("expected ErrNoEvents, got %v", err)
		}
	})
}
