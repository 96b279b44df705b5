package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/planningalerts-scrapers/horizon-xml/pkg/record"
)

// Mongo stores one document per application.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// OpenMongo connects and ensures the unique council_reference index.
func OpenMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(collection)

	_, err = coll.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys: bson.D{{Key: record.UniqueKey, Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{record.UniqueKey: bson.M{"$type": "string"}}),
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &Mongo{client: client, collection: coll}, nil
}

// Upsert replaces the document with the same council_reference. Records
// without one are inserted as new documents.
func (m *Mongo) Upsert(ctx context.Context, rec record.Record) error {
	var err error
	if rec.CouncilReference == nil {
		_, err = m.collection.InsertOne(ctx, rec)
	} else {
		_, err = m.collection.ReplaceOne(ctx,
			bson.M{record.UniqueKey: *rec.CouncilReference},
			rec,
			options.Replace().SetUpsert(true),
		)
	}
	observe(DriverMongo, err)
	if err != nil {
		return fmt.Errorf("upsert %q: %w", rec.Key(), err)
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
