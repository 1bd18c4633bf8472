package es

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// EventTested test event
type EventTested struct {
	Msg string
}

func TestRegistryBuildsFreshInstances(t *testing.T) {
	registry := NewEventRegistry()
	registry.Set(&EventTested{})

	v, err := registry.New("es.EventTested")
	assert.NoError(t, err)

	evt, ok := v.(*EventTested)
	assert.True(t, ok)
	assert.Equal(t, "", evt.Msg)
}

func TestRegistryUnknownType(t *testing.T) {
	registry := NewEventRegistry()

	_, err := registry.New("es.Missing")
	assert.Error(t, err)
	assert.Equal(t, ErrUnknownEventType, errors.Cause(err))
}

func TestRegistryRevision(t *testing.T) {
	registry := NewEventRegistry()
	registry.SetWithRevision(&EventTested{}, "2")

	assert.Equal(t, "2", registry.Revision("es.EventTested"))
	assert.Equal(t, "", registry.Revision("es.Missing"))
}

func TestGetTypeName(t *testing.T) {
	_, name := GetTypeName(&EventTested{})
	assert.Equal(t, "es.EventTested", name)

	_, name = GetTypeName(EventTested{})
	assert.Equal(t, "es.EventTested", name)
}
