package journal

import (
	"context"
	"sync"
)

// Filter narrows ReadAll results. Zero values match everything.
type Filter struct {
	// StreamID restricts results to one stream.
	StreamID string

	// Types restricts results to the named event types.
	Types []string
}

func (f Filter) matches(e *Event) bool {
	if f.StreamID != "" && e.StreamID != f.StreamID {
		return false
	}
	if len(f.Types) > 0 {
		ok := false
		for _, t := range f.Types {
			if e.Type == t {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Store persists event streams.
//
// Append uses optimistic concurrency: expectedVersion must equal the
// stream's current head version (-1 for a new stream) or the append fails
// with ErrConcurrencyConflict and writes nothing.
type Store interface {
	// Append adds events to a stream and returns the new head version.
	Append(ctx context.Context, streamID string, expectedVersion int, events []*Event) (int, error)

	// Read returns a stream's events starting at fromVersion, in order.
	Read(ctx context.Context, streamID string, fromVersion int) ([]*Event, error)

	// ReadAll returns every event matching the filter, in append order.
	ReadAll(ctx context.Context, f Filter) ([]*Event, error)

	// StreamVersion returns a stream's head version, -1 if it is empty.
	StreamVersion(ctx context.Context, streamID string) (int, error)

	// Close releases the store's resources.
	Close() error
}

// MemoryStore is an in-process Store for tests and simulations.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]*Event
	order   []*Event
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{streams: make(map[string][]*Event)}
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, streamID string, expectedVersion int, events []*Event) (int, error) {
	if len(events) == 0 {
		return 0, ErrNoEvents
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[streamID]
	head := len(stream) - 1
	if expectedVersion != head {
		return 0, ErrConcurrencyConflict
	}

	for _, e := range events {
		e.StreamID = streamID
		e.Version = len(stream)
		stream = append(stream, e)
		s.order = append(s.order, e)
	}
	s.streams[streamID] = stream
	return len(stream) - 1, nil
}

// Read implements Store.
func (s *MemoryStore) Read(_ context.Context, streamID string, fromVersion int) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.streams[streamID]
	var out []*Event
	for _, e := range stream {
		if e.Version >= fromVersion {
			out = append(out, e)
		}
	}
	return out, nil
}

// ReadAll implements Store.
func (s *MemoryStore) ReadAll(_ context.Context, f Filter) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for _, e := range s.order {
		if f.matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// StreamVersion implements Store.
func (s *MemoryStore) StreamVersion(_ context.Context, streamID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams[streamID]) - 1, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
