package mongo

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/contextgg/go-es-mongo/es"
)

var (
	// EventsCollection name within the database
	EventsCollection = "events"
	// SnapshotsCollection name within the database
	SnapshotsCollection = "snapshots"
)

// Option so we can tweak how the store behaves
type Option = func(*Store)

// WithCollections overrides the default collection names
func WithCollections(events string, snapshots string) Option {
	return func(s *Store) {
		s.events = s.db.Collection(events)
		s.snapshots = s.db.Collection(snapshots)
	}
}

// WithSkipUnknownTypes drops stored events whose payload type is no longer
// registered instead of failing the replay
func WithSkipUnknownTypes() Option {
	return func(s *Store) {
		s.skipUnknownTypes = true
	}
}

// WithUpcasters installs the upcaster chain run on every read
func WithUpcasters(upcasters ...es.Upcaster) Option {
	return func(s *Store) {
		s.upcasters = es.NewUpcasterChain(upcasters...)
	}
}

// NewStore builds an event store on the database using the given strategy
// and serializer. Indexes are declared up front; EnsureIndexes is idempotent
// so restarting is safe.
func NewStore(ctx context.Context, db *mongo.Database, strategy StorageStrategy, serializer es.Serializer, opts ...Option) (*Store, error) {
	s := &Store{
		db:         db,
		strategy:   strategy,
		serializer: serializer,
		upcasters:  es.NewUpcasterChain(),
		events:     db.Collection(EventsCollection),
		snapshots:  db.Collection(SnapshotsCollection),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := strategy.EnsureIndexes(ctx, s.events, s.snapshots); err != nil {
		log.
			Error().
			Err(err).
			Msg("Could not ensure indexes")
		return nil, err
	}
	return s, nil
}

// Store is an event store persisting one document per event in mongodb
type Store struct {
	db               *mongo.Database
	strategy         StorageStrategy
	serializer       es.Serializer
	upcasters        es.UpcasterChain
	skipUnknownTypes bool

	events    *mongo.Collection
	snapshots *mongo.Collection
}

// SaveEvents maps the events to documents and inserts them. A duplicate key
// on the unique aggregate index means another writer got there first and is
// reported as es.ErrConcurrencyConflict; reload and retry the append.
func (c *Store) SaveEvents(ctx context.Context, aggregateType string, events []*es.Event) error {
	if len(events) == 0 {
		log.Debug().Msg("No events")
		return nil
	}

	logger := log.
		With().
		Str("aggregateType", aggregateType).
		Int("count", len(events)).
		Logger()

	docs, err := c.strategy.CreateDocuments(aggregateType, c.serializer, events)
	if err != nil {
		logger.
			Error().
			Err(err).
			Msg("Could not map events")
		return err
	}

	if _, err := c.events.InsertMany(ctx, docs); err != nil {
		if isDuplicateKeyError(err) {
			logger.
				Error().
				Err(err).
				Msg("Sequence number already taken")
			return es.ErrConcurrencyConflict
		}
		logger.
			Error().
			Err(err).
			Msg("Could not insert events")
		return err
	}

	return nil
}

// LoadEvents replays the aggregate's history from the sequence number on
func (c *Store) LoadEvents(ctx context.Context, aggregateType string, aggregateID string, firstSequenceNumber int64) ([]*es.Event, error) {
	logger := log.
		With().
		Str("aggregateType", aggregateType).
		Str("aggregateID", aggregateID).
		Int64("firstSequenceNumber", firstSequenceNumber).
		Logger()

	cur, err := c.strategy.FindEventsForAggregate(ctx, c.events, aggregateType, aggregateID, firstSequenceNumber)
	if err != nil {
		logger.
			Error().
			Err(err).
			Msg("Couldn't find events")
		return nil, err
	}
	defer cur.Close(ctx)

	return c.drain(ctx, cur, aggregateID)
}

// LoadAll streams every event matching the criteria across all aggregates,
// ordered by timestamp then sequence number. A nil criteria loads everything.
func (c *Store) LoadAll(ctx context.Context, criteria Criteria) ([]*es.Event, error) {
	cur, err := c.strategy.FindEvents(ctx, c.events, criteria)
	if err != nil {
		log.
			Error().
			Err(err).
			Msg("Couldn't find events")
		return nil, err
	}
	defer cur.Close(ctx)

	return c.drain(ctx, cur, "")
}

// SaveSnapshot stores a snapshot under the same document shape as events
func (c *Store) SaveSnapshot(ctx context.Context, aggregateType string, snapshot *es.Event) error {
	logger := log.
		With().
		Str("aggregateType", aggregateType).
		Str("aggregateID", snapshot.AggregateID).
		Int64("sequenceNumber", snapshot.SequenceNumber).
		Logger()

	entry, err := NewEventEntry(aggregateType, snapshot, c.serializer)
	if err != nil {
		logger.
			Error().
			Err(err).
			Msg("Could not map snapshot")
		return err
	}

	if _, err := c.snapshots.InsertOne(ctx, entry.AsDocument()); err != nil {
		if isDuplicateKeyError(err) {
			return es.ErrConcurrencyConflict
		}
		logger.
			Error().
			Err(err).
			Msg("Could not insert snapshot")
		return err
	}
	return nil
}

// LoadLastSnapshot returns the snapshot with the highest sequence number for
// the aggregate, or nil when there is none
func (c *Store) LoadLastSnapshot(ctx context.Context, aggregateType string, aggregateID string) (*es.Event, error) {
	cur, err := c.strategy.FindLastSnapshot(ctx, c.snapshots, aggregateType, aggregateID)
	if err != nil {
		log.
			Error().
			Err(err).
			Str("aggregateID", aggregateID).
			Msg("Couldn't find snapshot")
		return nil, err
	}
	defer cur.Close(ctx)

	events, err := c.drain(ctx, cur, aggregateID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return events[0], nil
}

// Close underlying connection
func (c *Store) Close(ctx context.Context) error {
	if c.db != nil {
		return c.db.
			Client().
			Disconnect(ctx)
	}
	return nil
}

func (c *Store) drain(ctx context.Context, cur *mongo.Cursor, aggregateID string) ([]*es.Event, error) {
	events := []*es.Event{}
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}

		mapped, err := c.strategy.ExtractEventMessages(doc, aggregateID, c.serializer, c.upcasters, c.skipUnknownTypes)
		if err != nil {
			return nil, err
		}
		events = append(events, mapped...)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// isDuplicateKeyError spots unique index violations in both single and bulk
// write failures
func isDuplicateKeyError(err error) bool {
	switch e := err.(type) {
	case mongo.BulkWriteException:
		for _, we := range e.WriteErrors {
			if we.Code == 11000 || we.Code == 11001 {
				return true
			}
		}
	case mongo.WriteException:
		for _, we := range e.WriteErrors {
			if we.Code == 11000 || we.Code == 11001 {
				return true
			}
		}
	}
	return false
}
