package mongo

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/contextgg/go-es-mongo/es"
)

// NewSerializer builds a bson serializer backed by the registry. It can
// target both representations; entries built with it store payloads as
// native documents.
func NewSerializer(registry es.EventRegistry) es.Serializer {
	return &bsonSerializer{registry}
}

type bsonSerializer struct {
	registry es.EventRegistry
}

func (s *bsonSerializer) CanSerializeTo(kind es.Representation) bool {
	return kind == es.Document || kind == es.Text
}

func (s *bsonSerializer) Serialize(v interface{}, kind es.Representation) (es.SerializedObject, error) {
	_, name := es.GetTypeName(v)
	obj := es.SerializedObject{
		Kind:     kind,
		Type:     name,
		Revision: s.registry.Revision(name),
	}

	switch kind {
	case es.Document:
		blob, err := bson.Marshal(v)
		if err != nil {
			return es.SerializedObject{}, err
		}
		var doc bson.M
		if err := bson.Unmarshal(blob, &doc); err != nil {
			return es.SerializedObject{}, err
		}
		obj.Data = doc
	case es.Text:
		blob, err := bson.MarshalExtJSON(v, true, false)
		if err != nil {
			return es.SerializedObject{}, err
		}
		obj.Data = string(blob)
	default:
		return es.SerializedObject{}, errors.Errorf("unsupported representation %d", kind)
	}

	return obj, nil
}

func (s *bsonSerializer) Deserialize(obj es.SerializedObject) (interface{}, error) {
	if obj.Type == es.MetaDataType {
		var metadata map[string]interface{}
		if err := s.decode(obj, &metadata); err != nil {
			return nil, err
		}
		return metadata, nil
	}

	v, err := s.registry.New(obj.Type)
	if err != nil {
		return nil, err
	}
	if err := s.decode(obj, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *bsonSerializer) decode(obj es.SerializedObject, out interface{}) error {
	switch obj.Kind {
	case es.Document:
		blob, err := bson.Marshal(obj.Data)
		if err != nil {
			return err
		}
		return bson.Unmarshal(blob, out)
	case es.Text:
		raw, err := textData(obj.Data)
		if err != nil {
			return err
		}
		return bson.UnmarshalExtJSON(raw, true, out)
	}
	return errors.Errorf("unsupported representation %d", obj.Kind)
}

func textData(data interface{}) ([]byte, error) {
	switch d := data.(type) {
	case string:
		return []byte(d), nil
	case []byte:
		return d, nil
	}
	return nil, errors.Errorf("serialized data is %T, not text", data)
}
