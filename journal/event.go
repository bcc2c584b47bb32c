// Package journal records accepted auction lifecycle transitions as
// append-only event streams with optimistic concurrency control.
//
// Each auction instance owns one stream; events carry CBOR-encoded payloads
// so readers reconstruct the lifecycle without the live instance. Rejected
// bids are deliberately not journaled: they are not state transitions.
package journal

import (
	"errors"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

var (
	// ErrConcurrencyConflict reports an append whose expected version no
	// longer matches the stream head.
	ErrConcurrencyConflict = errors.New("journal: stream version conflict")

	// ErrNoEvents reports an append with an empty batch.
	ErrNoEvents = errors.New("journal: no events to append")
)

// Event is one recorded lifecycle transition.
type Event struct {
	// ID uniquely identifies the event.
	ID string

	// StreamID names the auction instance the event belongs to.
	StreamID string

	// Type is the transition name ("initialized", "settled", "upgraded").
	Type string

	// Version is the event's position in its stream, assigned on append.
	Version int

	// Data is the CBOR-encoded payload.
	Data []byte

	// Timestamp records when the event was created.
	Timestamp time.Time
}

// NewEvent creates an event with a fresh ID and a CBOR-encoded payload.
// A nil payload produces an event with no data.
func NewEvent(streamID, eventType string, payload any) (*Event, error) {
	var data []byte
	if payload != nil {
		encoded, err := cbor.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = encoded
	}
	return &Event{
		ID:        uuid.NewString(),
		StreamID:  streamID,
		Type:      eventType,
		Version:   -1,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the event payload into v.
func (e *Event) Decode(v any) error {
	return cbor.Unmarshal(e.Data, v)
}
