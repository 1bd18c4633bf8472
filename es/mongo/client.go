package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/contextgg/go-es-mongo/es"
)

// NewClient connects to mongodb and builds a store with the
// document-per-event strategy and the bson serializer
func NewClient(ctx context.Context, uri string, db string, registry es.EventRegistry, opts ...Option) (*Store, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	return NewStore(
		ctx,
		cli.Database(db),
		NewDocumentPerEventStrategy(),
		NewSerializer(registry),
		opts...,
	)
}
