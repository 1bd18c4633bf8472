package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/contextgg/go-es-mongo/es"
	"github.com/contextgg/go-es-mongo/es/basic"
)

// SomethingHappened test event
type SomethingHappened struct {
	Name string `bson:"name" json:"name"`
}

func newTestRegistry() es.EventRegistry {
	registry := es.NewEventRegistry()
	registry.SetWithRevision(&SomethingHappened{}, "2")
	return registry
}

func TestEntryDocumentFields(t *testing.T) {
	serializer := basic.NewJSONSerializer(newTestRegistry())

	event := es.NewEvent("agg-1", 1, &SomethingHappened{Name: "first"})
	event.Metadata = map[string]interface{}{"user": "root"}

	entry, err := NewEventEntry("Thing", event, serializer)
	assert.NoError(t, err)

	doc := entry.AsDocument()
	assert.Equal(t, "agg-1", doc["aggregateIdentifier"])
	assert.Equal(t, int64(1), doc["sequenceNumber"])
	assert.Equal(t, "Thing", doc["type"])
	assert.Equal(t, "mongo.SomethingHappened", doc["payloadType"])
	assert.Equal(t, "2", doc["payloadRevision"])
	assert.Equal(t, event.ID, doc["eventIdentifier"])
	assert.Equal(t, event.Timestamp.UTC().Format(timeStampLayout), doc["timeStamp"])

	// the json serializer cannot target documents, so both fall back to text
	_, ok := doc["serializedPayload"].(string)
	assert.True(t, ok)
	_, ok = doc["serializedMetaData"].(string)
	assert.True(t, ok)
}

func TestEntryEmptyRevisionStoredAsNull(t *testing.T) {
	registry := es.NewEventRegistry()
	registry.Set(&SomethingHappened{})
	serializer := basic.NewJSONSerializer(registry)

	entry, err := NewEventEntry("Thing", es.NewEvent("agg-1", 1, &SomethingHappened{}), serializer)
	assert.NoError(t, err)
	assert.Nil(t, entry.AsDocument()["payloadRevision"])
}

func TestEntryRoundTrip(t *testing.T) {
	serializer := basic.NewJSONSerializer(newTestRegistry())
	chain := es.NewUpcasterChain()

	event := es.NewEvent("agg-1", 7, &SomethingHappened{Name: "first"})
	event.Metadata = map[string]interface{}{"user": "root"}

	entry, err := NewEventEntry("Thing", event, serializer)
	assert.NoError(t, err)

	read, err := entryFromDocument(entry.AsDocument())
	assert.NoError(t, err)
	assert.Equal(t, event.ID, read.EventIdentifier())
	assert.Equal(t, "agg-1", read.AggregateIdentifier())
	assert.Equal(t, int64(7), read.SequenceNumber())
	assert.True(t, read.Timestamp().Equal(event.Timestamp))

	events, err := read.DomainEvents("", serializer, chain, false)
	assert.NoError(t, err)
	assert.Len(t, events, 1)

	got := events[0]
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, event.AggregateID, got.AggregateID)
	assert.Equal(t, event.SequenceNumber, got.SequenceNumber)
	assert.Equal(t, &SomethingHappened{Name: "first"}, got.Data)
	assert.Equal(t, map[string]interface{}{"user": "root"}, got.Metadata)
}

func TestEntryMetaDataTypeResetsToDefault(t *testing.T) {
	serializer := basic.NewJSONSerializer(newTestRegistry())

	entry, err := NewEventEntry("Thing", es.NewEvent("agg-1", 1, &SomethingHappened{}), serializer)
	assert.NoError(t, err)

	read, err := entryFromDocument(entry.AsDocument())
	assert.NoError(t, err)

	metaData := read.MetaData()
	assert.Equal(t, es.MetaDataType, metaData.Type)
	assert.Equal(t, "", metaData.Revision)
}

func TestRepresentationInferredFromPayloadShape(t *testing.T) {
	jsonSerializer := basic.NewJSONSerializer(newTestRegistry())
	bsonSerializer := NewSerializer(newTestRegistry())

	event := es.NewEvent("agg-1", 1, &SomethingHappened{Name: "x"})

	textEntry, err := NewEventEntry("Thing", event, jsonSerializer)
	assert.NoError(t, err)
	read, err := entryFromDocument(textEntry.AsDocument())
	assert.NoError(t, err)
	assert.Equal(t, es.Text, read.Payload().Kind)
	assert.Equal(t, es.Text, read.MetaData().Kind)

	docEntry, err := NewEventEntry("Thing", event, bsonSerializer)
	assert.NoError(t, err)
	read, err = entryFromDocument(docEntry.AsDocument())
	assert.NoError(t, err)
	assert.Equal(t, es.Document, read.Payload().Kind)
	assert.Equal(t, es.Document, read.MetaData().Kind)
}

func TestEntryFromDocumentRejectsBadFields(t *testing.T) {
	serializer := basic.NewJSONSerializer(newTestRegistry())

	entry, err := NewEventEntry("Thing", es.NewEvent("agg-1", 1, &SomethingHappened{}), serializer)
	assert.NoError(t, err)

	missingSeq := entry.AsDocument()
	delete(missingSeq, "sequenceNumber")
	_, err = entryFromDocument(missingSeq)
	assert.Error(t, err)

	badSeq := entry.AsDocument()
	badSeq["sequenceNumber"] = "seven"
	_, err = entryFromDocument(badSeq)
	assert.Error(t, err)

	badTime := entry.AsDocument()
	badTime["timeStamp"] = "yesterday"
	_, err = entryFromDocument(badTime)
	assert.Error(t, err)

	missingID := entry.AsDocument()
	delete(missingID, "aggregateIdentifier")
	_, err = entryFromDocument(missingID)
	assert.Error(t, err)
}

func TestTimeStampsSortLexically(t *testing.T) {
	times := []time.Time{
		time.Date(2019, 12, 31, 23, 59, 59, 999999999, time.UTC),
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 1, 0, 0, 0, 1, time.UTC),
		time.Date(2020, 6, 15, 12, 0, 0, 500000000, time.UTC),
	}

	for i := 1; i < len(times); i++ {
		before := times[i-1].Format(timeStampLayout)
		after := times[i].Format(timeStampLayout)
		assert.True(t, before < after, "%s should sort before %s", before, after)
	}
}

func TestRepresentationOf(t *testing.T) {
	assert.Equal(t, es.Text, representationOf("{}"))
	assert.Equal(t, es.Text, representationOf(nil))
	assert.Equal(t, es.Document, representationOf(bson.M{"name": "x"}))
	assert.Equal(t, es.Document, representationOf(bson.D{{Key: "name", Value: "x"}}))
}
