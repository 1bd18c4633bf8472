package es

import (
	"reflect"
	"sync"

	"github.com/pkg/errors"
)

// EventRegistry stores factories for payload types so stored events can be
// rebuilt into their concrete types. It also tracks the schema revision
// persisted alongside each payload, which upcasters key off.
type EventRegistry interface {
	// Set registers a payload type with no revision
	Set(data interface{})
	// SetWithRevision registers a payload type under a schema revision
	SetWithRevision(data interface{}, revision string)
	// New builds a fresh instance for the logical type name
	New(typeName string) (interface{}, error)
	// Revision returns the registered revision for the logical type name
	Revision(typeName string) string
}

// NewEventRegistry creates an empty EventRegistry
func NewEventRegistry() EventRegistry {
	return &eventRegistry{
		registry: make(map[string]registration),
	}
}

type registration struct {
	t        reflect.Type
	revision string
}

type eventRegistry struct {
	sync.RWMutex
	registry map[string]registration
}

func (r *eventRegistry) Set(data interface{}) {
	r.SetWithRevision(data, "")
}

func (r *eventRegistry) SetWithRevision(data interface{}, revision string) {
	r.Lock()
	defer r.Unlock()

	t, name := GetTypeName(data)
	r.registry[name] = registration{t, revision}
}

func (r *eventRegistry) New(typeName string) (interface{}, error) {
	r.RLock()
	defer r.RUnlock()

	reg, ok := r.registry[typeName]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEventType, "cannot find %s in registry", typeName)
	}
	return reflect.New(reg.t).Interface(), nil
}

func (r *eventRegistry) Revision(typeName string) string {
	r.RLock()
	defer r.RUnlock()

	return r.registry[typeName].revision
}

// GetTypeName of the underlying type, dereferencing pointers
func GetTypeName(source interface{}) (reflect.Type, string) {
	rawType := reflect.TypeOf(source)
	if rawType.Kind() == reflect.Ptr {
		rawType = rawType.Elem()
	}
	return rawType, rawType.String()
}
