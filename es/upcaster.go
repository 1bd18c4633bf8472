package es

import (
	"time"

	"github.com/pkg/errors"
)

// SerializedDomainEventData is the read view of one stored event entry, as
// the upcaster chain and serializer consume it.
type SerializedDomainEventData interface {
	EventIdentifier() string
	AggregateIdentifier() string
	SequenceNumber() int64
	Timestamp() time.Time
	Payload() SerializedObject
	MetaData() SerializedObject
}

// Upcaster rewrites an old payload shape into one or more current shapes.
// One stored event may fan out into several logical events.
type Upcaster interface {
	// CanUpcast reports whether this upcaster handles the type at the revision
	CanUpcast(typeName string, revision string) bool
	// Upcast the serialized object into its replacement(s), in order
	Upcast(obj SerializedObject) ([]SerializedObject, error)
}

// UpcasterChain evolves a stored entry through the registered upcasters and
// deserializes whatever comes out the far end.
type UpcasterChain interface {
	UpcastAndDeserialize(data SerializedDomainEventData, aggregateID string, serializer Serializer, skipUnknownTypes bool) ([]*Event, error)
}

// NewUpcasterChain runs the given upcasters in order
func NewUpcasterChain(upcasters ...Upcaster) UpcasterChain {
	return &upcasterChain{upcasters}
}

type upcasterChain struct {
	upcasters []Upcaster
}

func (c *upcasterChain) UpcastAndDeserialize(data SerializedDomainEventData, aggregateID string, serializer Serializer, skipUnknownTypes bool) ([]*Event, error) {
	objects := []SerializedObject{data.Payload()}

	for _, upcaster := range c.upcasters {
		next := make([]SerializedObject, 0, len(objects))
		for _, obj := range objects {
			if !upcaster.CanUpcast(obj.Type, obj.Revision) {
				next = append(next, obj)
				continue
			}
			upcasted, err := upcaster.Upcast(obj)
			if err != nil {
				return nil, err
			}
			next = append(next, upcasted...)
		}
		objects = next
	}

	if aggregateID == "" {
		aggregateID = data.AggregateIdentifier()
	}

	metadata, err := deserializeMetaData(serializer, data.MetaData())
	if err != nil {
		return nil, err
	}

	events := make([]*Event, 0, len(objects))
	for _, obj := range objects {
		payload, err := serializer.Deserialize(obj)
		if err != nil {
			if skipUnknownTypes && errors.Cause(err) == ErrUnknownEventType {
				continue
			}
			return nil, err
		}

		events = append(events, &Event{
			ID:             data.EventIdentifier(),
			AggregateID:    aggregateID,
			SequenceNumber: data.SequenceNumber(),
			Timestamp:      data.Timestamp(),
			Data:           payload,
			Metadata:       metadata,
		})
	}
	return events, nil
}

func deserializeMetaData(serializer Serializer, obj SerializedObject) (map[string]interface{}, error) {
	if obj.Data == nil {
		return nil, nil
	}

	v, err := serializer.Deserialize(obj)
	if err != nil {
		return nil, err
	}
	metadata, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("metadata deserialized into %T, not a map", v)
	}
	return metadata, nil
}
