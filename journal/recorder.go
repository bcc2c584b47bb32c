package journal

import (
	"context"

	"github.com/rs/zerolog"
)

// Recorder adapts a Store to the proxy's fire-and-forget recording hook.
//
// Recording is observational: a journaling failure must not fail the
// settlement that already committed, so errors are logged rather than
// propagated.
type Recorder struct {
	store Store
	log   zerolog.Logger
}

// NewRecorder creates a recorder writing to store and logging failures
// through logger.
func NewRecorder(store Store, logger zerolog.Logger) *Recorder {
	return &Recorder{store: store, log: logger}
}

// Record appends one event to the stream, holding the optimistic lock
// against the current head.
func (r *Recorder) Record(streamID, eventType string, payload any) {
	ctx := context.Background()

	event, err := NewEvent(streamID, eventType, payload)
	if err != nil {
		r.log.Error().Err(err).
			Str("stream", streamID).
			Str("type", eventType).
			Msg("encode journal event")
		return
	}

	head, err := r.store.StreamVersion(ctx, streamID)
	if err != nil {
		r.log.Error().Err(err).Str("stream", streamID).Msg("read stream version")
		return
	}
	if _, err := r.store.Append(ctx, streamID, head, []*Event{event}); err != nil {
		r.log.Error().Err(err).
			Str("stream", streamID).
			Str("type", eventType).
			Msg("append journal event")
	}
}
