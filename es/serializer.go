package es

// Representation is the concrete shape serialized data takes in the store.
// It is chosen at write time by probing the serializer and re-derived at
// read time from the shape of the stored payload.
type Representation int

const (
	// Text stores the serialized form as a UTF-8 string
	Text Representation = iota
	// Document stores the serialized form as a native bson document
	Document
)

// MetaDataType is the logical type reported for metadata read back from the
// store. The metadata's own type name and revision are never persisted, so
// every entry reports this default with an empty revision.
const MetaDataType = "es.MetaData"

// SerializedObject carries serialized data together with its representation
// kind and the logical type it deserializes into.
type SerializedObject struct {
	Kind     Representation
	Data     interface{}
	Type     string
	Revision string
}

// Serializer turns payloads into serialized objects and back
type Serializer interface {
	// CanSerializeTo reports whether the serializer can target the representation
	CanSerializeTo(Representation) bool

	// Serialize the value into the given representation
	Serialize(v interface{}, kind Representation) (SerializedObject, error)

	// Deserialize the object back into its concrete type. Returns
	// ErrUnknownEventType when the logical type has no registered factory.
	Deserialize(obj SerializedObject) (interface{}, error)
}
