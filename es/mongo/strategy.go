package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/contextgg/go-es-mongo/es"
)

const (
	orderAsc  = 1
	orderDesc = -1
)

// Criteria is an externally built boolean filter over event documents. The
// strategy only plugs the rendered filter into a query, it does not
// interpret the expression tree.
type Criteria interface {
	AsFilter() bson.M
}

// StorageStrategy maps domain events to documents and builds the queries and
// indexes the event store runs against its collections. It performs no
// writes of its own; inserting the documents it creates is the caller's job,
// as is closing every cursor it hands out.
type StorageStrategy interface {
	// CreateDocuments maps each event to one document, in order
	CreateDocuments(aggregateType string, serializer es.Serializer, events []*es.Event) ([]interface{}, error)

	// ExtractEventMessages turns one stored document back into event messages
	ExtractEventMessages(doc bson.M, aggregateID string, serializer es.Serializer, chain es.UpcasterChain, skipUnknownTypes bool) ([]*es.Event, error)

	// FindEventsForAggregate streams an aggregate's events from the given
	// sequence number on, in sequence order
	FindEventsForAggregate(ctx context.Context, coll *mongo.Collection, aggregateType string, aggregateID string, firstSequenceNumber int64) (*mongo.Cursor, error)

	// FindEvents streams all events matching the criteria, or every event
	// when criteria is nil, ordered by timestamp then sequence number
	FindEvents(ctx context.Context, coll *mongo.Collection, criteria Criteria) (*mongo.Cursor, error)

	// FindLastSnapshot streams at most one document: the snapshot with the
	// highest sequence number for the aggregate
	FindLastSnapshot(ctx context.Context, coll *mongo.Collection, aggregateType string, aggregateID string) (*mongo.Cursor, error)

	// EnsureIndexes declares the indexes on both collections. Safe to call on
	// every startup.
	EnsureIndexes(ctx context.Context, events *mongo.Collection, snapshots *mongo.Collection) error
}

// NewDocumentPerEventStrategy stores each event as a separate document. That
// keeps individual events queryable but means a multi-event append is not
// atomic; the unique index on (aggregateIdentifier, type, sequenceNumber) is
// what turns concurrent appends into conflicts.
func NewDocumentPerEventStrategy() StorageStrategy {
	return &documentPerEvent{}
}

type documentPerEvent struct{}

func (s *documentPerEvent) CreateDocuments(aggregateType string, serializer es.Serializer, events []*es.Event) ([]interface{}, error) {
	docs := make([]interface{}, 0, len(events))
	for _, event := range events {
		entry, err := NewEventEntry(aggregateType, event, serializer)
		if err != nil {
			return nil, err
		}
		docs = append(docs, entry.AsDocument())
	}
	return docs, nil
}

func (s *documentPerEvent) ExtractEventMessages(doc bson.M, aggregateID string, serializer es.Serializer, chain es.UpcasterChain, skipUnknownTypes bool) ([]*es.Event, error) {
	entry, err := entryFromDocument(doc)
	if err != nil {
		return nil, err
	}
	return entry.DomainEvents(aggregateID, serializer, chain, skipUnknownTypes)
}

func (s *documentPerEvent) FindEventsForAggregate(ctx context.Context, coll *mongo.Collection, aggregateType string, aggregateID string, firstSequenceNumber int64) (*mongo.Cursor, error) {
	opts := options.Find().SetSort(aggregateSort())
	return coll.Find(ctx, forAggregateFrom(aggregateType, aggregateID, firstSequenceNumber), opts)
}

func (s *documentPerEvent) FindEvents(ctx context.Context, coll *mongo.Collection, criteria Criteria) (*mongo.Cursor, error) {
	filter := bson.M{}
	if criteria != nil {
		filter = criteria.AsFilter()
	}

	opts := options.Find().SetSort(eventStreamSort())
	return coll.Find(ctx, filter, opts)
}

func (s *documentPerEvent) FindLastSnapshot(ctx context.Context, coll *mongo.Collection, aggregateType string, aggregateID string) (*mongo.Cursor, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: sequenceNumberField, Value: orderDesc}}).
		SetLimit(1)
	return coll.Find(ctx, forAggregate(aggregateType, aggregateID), opts)
}

func (s *documentPerEvent) EnsureIndexes(ctx context.Context, events *mongo.Collection, snapshots *mongo.Collection) error {
	if _, err := events.Indexes().CreateMany(ctx, eventIndexModels()); err != nil {
		return err
	}
	_, err := snapshots.Indexes().CreateMany(ctx, snapshotIndexModels())
	return err
}

func forAggregate(aggregateType string, aggregateID string) bson.M {
	return bson.M{
		aggregateIdentifierField: aggregateID,
		aggregateTypeField:       aggregateType,
	}
}

func forAggregateFrom(aggregateType string, aggregateID string, firstSequenceNumber int64) bson.M {
	return bson.M{
		aggregateIdentifierField: aggregateID,
		aggregateTypeField:       aggregateType,
		sequenceNumberField:      bson.M{"$gte": firstSequenceNumber},
	}
}

func aggregateSort() bson.D {
	return bson.D{{Key: sequenceNumberField, Value: orderAsc}}
}

// eventStreamSort orders the global stream by occurrence time, with the
// sequence number breaking ties between events sharing a timestamp.
func eventStreamSort() bson.D {
	return bson.D{
		{Key: timeStampField, Value: orderAsc},
		{Key: sequenceNumberField, Value: orderAsc},
	}
}
