// Package criteria builds boolean filter expressions over stored event
// fields for cross-aggregate queries. Expressions render to a mongo filter
// and are consumed opaquely by the storage strategy.
package criteria

import "go.mongodb.org/mongo-driver/bson"

// Criteria is a boolean expression over event document fields
type Criteria interface {
	AsFilter() bson.M
}

// Property selects a document field to compare against
type Property string

// Is matches documents where the property equals the value
func (p Property) Is(v interface{}) Criteria {
	return compare{string(p), "$eq", v}
}

// IsNot matches documents where the property does not equal the value
func (p Property) IsNot(v interface{}) Criteria {
	return compare{string(p), "$ne", v}
}

// GreaterThan matches documents where the property exceeds the value
func (p Property) GreaterThan(v interface{}) Criteria {
	return compare{string(p), "$gt", v}
}

// GreaterThanEquals matches documents where the property is at least the value
func (p Property) GreaterThanEquals(v interface{}) Criteria {
	return compare{string(p), "$gte", v}
}

// LessThan matches documents where the property is below the value
func (p Property) LessThan(v interface{}) Criteria {
	return compare{string(p), "$lt", v}
}

// LessThanEquals matches documents where the property is at most the value
func (p Property) LessThanEquals(v interface{}) Criteria {
	return compare{string(p), "$lte", v}
}

// In matches documents where the property is any of the values
func (p Property) In(values ...interface{}) Criteria {
	return compare{string(p), "$in", values}
}

// NotIn matches documents where the property is none of the values
func (p Property) NotIn(values ...interface{}) Criteria {
	return compare{string(p), "$nin", values}
}

type compare struct {
	property string
	operator string
	value    interface{}
}

func (c compare) AsFilter() bson.M {
	return bson.M{c.property: bson.M{c.operator: c.value}}
}

// And matches documents satisfying every criteria
func And(criteria ...Criteria) Criteria {
	return combination{"$and", criteria}
}

// Or matches documents satisfying at least one criteria
func Or(criteria ...Criteria) Criteria {
	return combination{"$or", criteria}
}

type combination struct {
	operator string
	criteria []Criteria
}

func (c combination) AsFilter() bson.M {
	filters := make([]bson.M, 0, len(c.criteria))
	for _, crit := range c.criteria {
		filters = append(filters, crit.AsFilter())
	}
	return bson.M{c.operator: filters}
}

// Not matches documents failing the criteria
func Not(criteria Criteria) Criteria {
	return negation{criteria}
}

type negation struct {
	criteria Criteria
}

func (n negation) AsFilter() bson.M {
	return bson.M{"$nor": []bson.M{n.criteria.AsFilter()}}
}
