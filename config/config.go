package config

import (
	"context"

	"github.com/contextgg/go-es-mongo/es"
	"github.com/contextgg/go-es-mongo/es/basic"
	"github.com/contextgg/go-es-mongo/es/mongo"
	"github.com/contextgg/go-es-mongo/es/nats"
)

// EventBus returns an es.EventBus impl
type EventBus func() (es.EventBus, error)

// EventStore returns an es.EventStore impl
type EventStore func() (es.EventStore, error)

// Client has all the info / services for our ES platform
type Client struct {
	EventStore es.EventStore
	EventBus   es.EventBus
}

// Close all the underlying services
func (c *Client) Close() {
	if c.EventBus != nil {
		c.EventBus.Close()
	}
	if c.EventStore != nil {
		c.EventStore.Close(context.TODO())
	}
}

// NewClient will build a client for our es pattern
func NewClient(storeFactory EventStore, eventBusFactory EventBus) (*Client, error) {
	store, err := storeFactory()
	if err != nil {
		return nil, err
	}

	eventBus, err := eventBusFactory()
	if err != nil {
		return nil, err
	}

	return &Client{
		EventStore: store,
		EventBus:   eventBus,
	}, nil
}

// Mongo generates a MongoDB implementation of EventStore. Every event type
// that can come back out of the store needs to be registered up front.
func Mongo(uri, db string, events ...interface{}) EventStore {
	registry := es.NewEventRegistry()
	for _, evt := range events {
		registry.Set(evt)
	}

	return func() (es.EventStore, error) {
		return mongo.NewClient(context.TODO(), uri, db, registry)
	}
}

// Nats generates a Nats implementation of EventBus
func Nats(uri string, namespace string) EventBus {
	return func() (es.EventBus, error) {
		return nats.NewClient(uri, namespace)
	}
}

// LocalPublisher used for testing
func LocalPublisher() EventBus {
	return func() (es.EventBus, error) {
		return basic.NewEventBus(), nil
	}
}
