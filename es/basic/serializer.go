package basic

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/contextgg/go-es-mongo/es"
)

// NewJSONSerializer builds a text-only serializer backed by the registry.
// Entries built with it store payloads as json strings.
func NewJSONSerializer(registry es.EventRegistry) es.Serializer {
	return &jsonSerializer{registry}
}

type jsonSerializer struct {
	registry es.EventRegistry
}

func (s *jsonSerializer) CanSerializeTo(kind es.Representation) bool {
	return kind == es.Text
}

func (s *jsonSerializer) Serialize(v interface{}, kind es.Representation) (es.SerializedObject, error) {
	if kind != es.Text {
		return es.SerializedObject{}, errors.Errorf("unsupported representation %d", kind)
	}

	blob, err := json.Marshal(v)
	if err != nil {
		return es.SerializedObject{}, err
	}

	_, name := es.GetTypeName(v)
	return es.SerializedObject{
		Kind:     es.Text,
		Data:     string(blob),
		Type:     name,
		Revision: s.registry.Revision(name),
	}, nil
}

func (s *jsonSerializer) Deserialize(obj es.SerializedObject) (interface{}, error) {
	raw, err := textData(obj)
	if err != nil {
		return nil, err
	}

	if obj.Type == es.MetaDataType {
		var metadata map[string]interface{}
		if err := json.Unmarshal(raw, &metadata); err != nil {
			return nil, err
		}
		return metadata, nil
	}

	v, err := s.registry.New(obj.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, err
	}
	return v, nil
}

func textData(obj es.SerializedObject) ([]byte, error) {
	switch d := obj.Data.(type) {
	case string:
		return []byte(d), nil
	case []byte:
		return d, nil
	}
	return nil, errors.Errorf("serialized data is %T, not text", obj.Data)
}
