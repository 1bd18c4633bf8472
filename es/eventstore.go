package es

import (
	"context"
)

// EventStore persists and replays domain events for aggregates. Snapshots
// share the event shape and live in their own collection; the last one wins.
type EventStore interface {
	// SaveEvents appends the events, one document per event. Returns
	// ErrConcurrencyConflict when a sequence number is already taken.
	SaveEvents(ctx context.Context, aggregateType string, events []*Event) error

	// LoadEvents replays an aggregate's history from the sequence number on
	LoadEvents(ctx context.Context, aggregateType string, aggregateID string, firstSequenceNumber int64) ([]*Event, error)

	// SaveSnapshot stores a point-in-time materialization of the aggregate
	SaveSnapshot(ctx context.Context, aggregateType string, snapshot *Event) error

	// LoadLastSnapshot returns the snapshot with the highest sequence number,
	// or nil when the aggregate has none
	LoadLastSnapshot(ctx context.Context, aggregateType string, aggregateID string) (*Event, error)

	Close(ctx context.Context) error
}
