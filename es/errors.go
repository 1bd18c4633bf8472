package es

import "errors"

var (
	// ErrUnknownEventType when a payload type has no registered factory
	ErrUnknownEventType = errors.New("Unknown event type")
	// ErrConcurrencyConflict when another writer already appended at the same
	// sequence number for the aggregate
	ErrConcurrencyConflict = errors.New("Concurrency conflict")
)
