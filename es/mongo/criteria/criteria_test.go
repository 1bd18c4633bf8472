package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestPropertyComparisons(t *testing.T) {
	assert.Equal(t,
		bson.M{"type": bson.M{"$eq": "Thing"}},
		Property("type").Is("Thing").AsFilter())

	assert.Equal(t,
		bson.M{"type": bson.M{"$ne": "Thing"}},
		Property("type").IsNot("Thing").AsFilter())

	assert.Equal(t,
		bson.M{"sequenceNumber": bson.M{"$gt": int64(3)}},
		Property("sequenceNumber").GreaterThan(int64(3)).AsFilter())

	assert.Equal(t,
		bson.M{"sequenceNumber": bson.M{"$gte": int64(3)}},
		Property("sequenceNumber").GreaterThanEquals(int64(3)).AsFilter())

	assert.Equal(t,
		bson.M{"sequenceNumber": bson.M{"$lt": int64(3)}},
		Property("sequenceNumber").LessThan(int64(3)).AsFilter())

	assert.Equal(t,
		bson.M{"sequenceNumber": bson.M{"$lte": int64(3)}},
		Property("sequenceNumber").LessThanEquals(int64(3)).AsFilter())
}

func TestPropertyMembership(t *testing.T) {
	assert.Equal(t,
		bson.M{"type": bson.M{"$in": []interface{}{"A", "B"}}},
		Property("type").In("A", "B").AsFilter())

	assert.Equal(t,
		bson.M{"type": bson.M{"$nin": []interface{}{"A", "B"}}},
		Property("type").NotIn("A", "B").AsFilter())
}

func TestCombinators(t *testing.T) {
	a := Property("type").Is("Thing")
	b := Property("sequenceNumber").GreaterThan(int64(3))

	assert.Equal(t,
		bson.M{"$and": []bson.M{a.AsFilter(), b.AsFilter()}},
		And(a, b).AsFilter())

	assert.Equal(t,
		bson.M{"$or": []bson.M{a.AsFilter(), b.AsFilter()}},
		Or(a, b).AsFilter())

	assert.Equal(t,
		bson.M{"$nor": []bson.M{a.AsFilter()}},
		Not(a).AsFilter())
}

func TestNestedExpressions(t *testing.T) {
	expr := And(
		Property("aggregateIdentifier").Is("agg-1"),
		Or(
			Property("payloadType").Is("es.Created"),
			Not(Property("payloadRevision").Is("1")),
		),
	)

	assert.Equal(t, bson.M{"$and": []bson.M{
		{"aggregateIdentifier": bson.M{"$eq": "agg-1"}},
		{"$or": []bson.M{
			{"payloadType": bson.M{"$eq": "es.Created"}},
			{"$nor": []bson.M{{"payloadRevision": bson.M{"$eq": "1"}}}},
		}},
	}}, expr.AsFilter())
}
