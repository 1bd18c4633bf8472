package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Index names are significant: mongo treats creating an index whose name and
// definition match an existing one as a no-op, which is what makes
// EnsureIndexes safe to run on every startup.
const (
	// UniqueAggregateIndex guards against two writers appending at the same
	// position in an aggregate's history
	UniqueAggregateIndex = "uniqueAggregateIndex"
	// OrderedEventStreamIndex backs the (timeStamp, sequenceNumber) sort of
	// cross-aggregate queries
	OrderedEventStreamIndex = "orderedEventStreamIndex"
)

func eventIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: aggregateIdentifierField, Value: orderAsc},
				{Key: aggregateTypeField, Value: orderAsc},
				{Key: sequenceNumberField, Value: orderAsc},
			},
			Options: options.Index().SetUnique(true).SetName(UniqueAggregateIndex),
		},
		{
			Keys: bson.D{
				{Key: timeStampField, Value: orderAsc},
				{Key: sequenceNumberField, Value: orderAsc},
			},
			Options: options.Index().SetUnique(false).SetName(OrderedEventStreamIndex),
		},
	}
}

func snapshotIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: aggregateIdentifierField, Value: orderAsc},
				{Key: aggregateTypeField, Value: orderAsc},
				{Key: sequenceNumberField, Value: orderAsc},
			},
			Options: options.Index().SetUnique(true).SetName(UniqueAggregateIndex),
		},
	}
}
