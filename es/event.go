package es

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is a single domain event message: an immutable fact about an
// aggregate, carrying its position in the aggregate's history.
type Event struct {
	ID             string
	AggregateID    string
	SequenceNumber int64
	Timestamp      time.Time
	Data           interface{}
	Metadata       map[string]interface{}
}

// String implements the String method of the Event interface.
func (e Event) String() string {
	_, name := GetTypeName(e.Data)
	return fmt.Sprintf("%s@%d", name, e.SequenceNumber)
}

// NewEvent will create an event for an aggregate from data
func NewEvent(aggregateID string, sequenceNumber int64, data interface{}) *Event {
	return &Event{
		ID:             uuid.New().String(),
		AggregateID:    aggregateID,
		SequenceNumber: sequenceNumber,
		Timestamp:      GetTimestamp(),
		Data:           data,
		Metadata:       map[string]interface{}{},
	}
}

// GetTimestamp for new events, truncated to UTC
func GetTimestamp() time.Time {
	return time.Now().UTC()
}
