package basic

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/contextgg/go-es-mongo/es"
)

// NoteAdded test event
type NoteAdded struct {
	Text string `json:"text"`
}

func TestJSONSerializerCapabilities(t *testing.T) {
	serializer := NewJSONSerializer(es.NewEventRegistry())

	assert.True(t, serializer.CanSerializeTo(es.Text))
	assert.False(t, serializer.CanSerializeTo(es.Document))
}

func TestJSONSerializerRoundTrip(t *testing.T) {
	registry := es.NewEventRegistry()
	registry.SetWithRevision(&NoteAdded{}, "3")
	serializer := NewJSONSerializer(registry)

	obj, err := serializer.Serialize(&NoteAdded{Text: "hello"}, es.Text)
	assert.NoError(t, err)
	assert.Equal(t, es.Text, obj.Kind)
	assert.Equal(t, "basic.NoteAdded", obj.Type)
	assert.Equal(t, "3", obj.Revision)
	assert.Equal(t, `{"text":"hello"}`, obj.Data)

	v, err := serializer.Deserialize(obj)
	assert.NoError(t, err)
	assert.Equal(t, &NoteAdded{Text: "hello"}, v)
}

func TestJSONSerializerRejectsDocuments(t *testing.T) {
	serializer := NewJSONSerializer(es.NewEventRegistry())

	_, err := serializer.Serialize(&NoteAdded{}, es.Document)
	assert.Error(t, err)
}

func TestJSONSerializerMetaData(t *testing.T) {
	serializer := NewJSONSerializer(es.NewEventRegistry())

	v, err := serializer.Deserialize(es.SerializedObject{
		Kind: es.Text,
		Data: `{"user":"root"}`,
		Type: es.MetaDataType,
	})
	assert.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"user": "root"}, v)
}

func TestJSONSerializerUnknownType(t *testing.T) {
	serializer := NewJSONSerializer(es.NewEventRegistry())

	_, err := serializer.Deserialize(es.SerializedObject{
		Kind: es.Text,
		Data: `{}`,
		Type: "basic.Retired",
	})
	assert.Error(t, err)
	assert.Equal(t, es.ErrUnknownEventType, errors.Cause(err))
}
