package mongo

import (
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/contextgg/go-es-mongo/es"
)

// Field names of an event document. These match what is already on disk in
// existing stores and must never change.
const (
	aggregateIdentifierField = "aggregateIdentifier"
	sequenceNumberField      = "sequenceNumber"
	aggregateTypeField       = "type"
	timeStampField           = "timeStamp"
	serializedPayloadField   = "serializedPayload"
	payloadTypeField         = "payloadType"
	payloadRevisionField     = "payloadRevision"
	serializedMetaDataField  = "serializedMetaData"
	eventIdentifierField     = "eventIdentifier"
)

// timeStampLayout renders timestamps fixed-width in UTC so that string order
// of the timeStamp field equals chronological order. The ordered event
// stream index sorts on the rendered string.
const timeStampLayout = "2006-01-02T15:04:05.000000000Z"

// EventEntry is one stored event: a single document per domain event message.
// The same shape is reused for snapshot documents.
type EventEntry struct {
	aggregateID   string
	aggregateType string
	sequence      int64
	timestamp     time.Time
	timeStamp     string
	payload       es.SerializedObject
	metaData      es.SerializedObject
	eventID       string
}

// NewEventEntry maps a domain event message to an entry ready for storage.
// Payload and metadata are serialized with the same representation: a native
// bson document when the serializer supports it, a string otherwise.
func NewEventEntry(aggregateType string, event *es.Event, serializer es.Serializer) (*EventEntry, error) {
	target := es.Text
	if serializer.CanSerializeTo(es.Document) {
		target = es.Document
	}

	payload, err := serializer.Serialize(event.Data, target)
	if err != nil {
		return nil, errors.Wrap(err, "serialize payload")
	}

	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metaData, err := serializer.Serialize(metadata, target)
	if err != nil {
		return nil, errors.Wrap(err, "serialize metadata")
	}

	timestamp := event.Timestamp.UTC()
	return &EventEntry{
		aggregateID:   event.AggregateID,
		aggregateType: aggregateType,
		sequence:      event.SequenceNumber,
		timestamp:     timestamp,
		timeStamp:     timestamp.Format(timeStampLayout),
		payload:       payload,
		metaData:      metaData,
		eventID:       event.ID,
	}, nil
}

// entryFromDocument rebuilds an entry from a raw stored document. The
// representation kind is re-derived from the shape of the stored payload;
// metadata is assumed to share it. The metadata's logical type and revision
// were never persisted, so the entry reports the default MetaDataType with no
// revision.
func entryFromDocument(doc bson.M) (*EventEntry, error) {
	aggregateID, ok := doc[aggregateIdentifierField].(string)
	if !ok {
		return nil, errors.Errorf("event document has no readable %s", aggregateIdentifierField)
	}
	aggregateType, ok := doc[aggregateTypeField].(string)
	if !ok {
		return nil, errors.Errorf("event document has no readable %s", aggregateTypeField)
	}
	eventID, ok := doc[eventIdentifierField].(string)
	if !ok {
		return nil, errors.Errorf("event document has no readable %s", eventIdentifierField)
	}
	payloadType, ok := doc[payloadTypeField].(string)
	if !ok {
		return nil, errors.Errorf("event document has no readable %s", payloadTypeField)
	}

	sequence, err := sequenceNumberOf(doc)
	if err != nil {
		return nil, err
	}

	rendered, ok := doc[timeStampField].(string)
	if !ok {
		return nil, errors.Errorf("event document has no readable %s", timeStampField)
	}
	timestamp, err := parseTimeStamp(rendered)
	if err != nil {
		return nil, errors.Wrapf(err, "unreadable %s", timeStampField)
	}

	// payloadRevision is nullable on disk
	revision, _ := doc[payloadRevisionField].(string)

	payloadData := doc[serializedPayloadField]
	kind := representationOf(payloadData)

	return &EventEntry{
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		sequence:      sequence,
		timestamp:     timestamp,
		timeStamp:     rendered,
		eventID:       eventID,
		payload: es.SerializedObject{
			Kind:     kind,
			Data:     payloadData,
			Type:     payloadType,
			Revision: revision,
		},
		metaData: es.SerializedObject{
			Kind: kind,
			Data: doc[serializedMetaDataField],
			Type: es.MetaDataType,
		},
	}, nil
}

// AsDocument renders the entry for insertion. An empty payload revision is
// stored as null.
func (e *EventEntry) AsDocument() bson.M {
	var revision interface{}
	if e.payload.Revision != "" {
		revision = e.payload.Revision
	}

	return bson.M{
		aggregateIdentifierField: e.aggregateID,
		sequenceNumberField:      e.sequence,
		serializedPayloadField:   e.payload.Data,
		timeStampField:           e.timeStamp,
		aggregateTypeField:       e.aggregateType,
		payloadTypeField:         e.payload.Type,
		payloadRevisionField:     revision,
		serializedMetaDataField:  e.metaData.Data,
		eventIdentifierField:     e.eventID,
	}
}

// DomainEvents hands the entry to the upcaster chain for reconstruction.
// Depending on the upcasters and skipUnknownTypes this yields zero, one or
// several event messages.
func (e *EventEntry) DomainEvents(aggregateID string, serializer es.Serializer, chain es.UpcasterChain, skipUnknownTypes bool) ([]*es.Event, error) {
	return chain.UpcastAndDeserialize(e, aggregateID, serializer, skipUnknownTypes)
}

// EventIdentifier of the stored event
func (e *EventEntry) EventIdentifier() string {
	return e.eventID
}

// AggregateIdentifier owning the stored event
func (e *EventEntry) AggregateIdentifier() string {
	return e.aggregateID
}

// SequenceNumber of the event within the aggregate's history
func (e *EventEntry) SequenceNumber() int64 {
	return e.sequence
}

// Timestamp of the event occurrence
func (e *EventEntry) Timestamp() time.Time {
	return e.timestamp
}

// Payload as stored, with its logical type and revision
func (e *EventEntry) Payload() es.SerializedObject {
	return e.payload
}

// MetaData as stored, reported under the default metadata type
func (e *EventEntry) MetaData() es.SerializedObject {
	return e.metaData
}

// representationOf mirrors the write-time choice: only document-shaped values
// count as Document, everything else reads back as Text.
func representationOf(v interface{}) es.Representation {
	switch v.(type) {
	case bson.M, bson.D, bson.Raw, bson.RawValue:
		return es.Document
	}
	return es.Text
}

func sequenceNumberOf(doc bson.M) (int64, error) {
	switch n := doc[sequenceNumberField].(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	}
	return 0, errors.Errorf("event document has no readable %s", sequenceNumberField)
}

func parseTimeStamp(rendered string) (time.Time, error) {
	if t, err := time.Parse(timeStampLayout, rendered); err == nil {
		return t, nil
	}
	// entries written by other clients may carry shorter fractions
	return time.Parse(time.RFC3339Nano, rendered)
}
