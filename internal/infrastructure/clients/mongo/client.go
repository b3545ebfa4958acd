package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/zatekoja/carefinder/pkg/config"
	"github.com/zatekoja/carefinder/pkg/retry"
)

// InsertResult reports the outcome of a single insert
type InsertResult struct {
	InsertedID   interface{}
	Acknowledged bool
}

// UpdateResult reports the outcome of a single update
type UpdateResult struct {
	Matched      int64
	Acknowledged bool
}

// DeleteResult reports the outcome of a single delete
type DeleteResult struct {
	Deleted      int64
	Acknowledged bool
}

// Client represents a MongoDB client bound to one database
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewClient connects to MongoDB and waits for the primary with exponential
// backoff retry
func NewClient(ctx context.Context, cfg *config.MongoConfig) (*Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	err = retry.Do(
		ctx,
		retry.DefaultConfig(),
		"MongoDB",
		func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return client.Ping(pingCtx, readpref.Primary())
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("MongoDB connection attempt failed")
		},
	)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to connect to MongoDB after retries: %w", err)
	}

	log.Info().Str("database", cfg.Database).Msg("Successfully connected to MongoDB")
	return &Client{client: client, db: client.Database(cfg.Database)}, nil
}

// Database returns the underlying database handle
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Aggregate runs pipeline on collection and returns every result document
func (c *Client) Aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline) ([]bson.Raw, error) {
	cursor, err := c.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.Raw
	for cursor.Next(ctx) {
		// Current is reused by the cursor
		doc := make(bson.Raw, len(cursor.Current))
		copy(doc, cursor.Current)
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// InsertOne inserts doc into collection
func (c *Client) InsertOne(ctx context.Context, collection string, doc interface{}) (InsertResult, error) {
	res, err := c.db.Collection(collection).InsertOne(ctx, doc)
	if errors.Is(err, mongo.ErrUnacknowledgedWrite) {
		return InsertResult{}, nil
	}
	if err != nil {
		return InsertResult{}, err
	}
	return InsertResult{InsertedID: res.InsertedID, Acknowledged: true}, nil
}

// UpdateOne applies update to the first document matching filter
func (c *Client) UpdateOne(ctx context.Context, collection string, filter, update interface{}) (UpdateResult, error) {
	res, err := c.db.Collection(collection).UpdateOne(ctx, filter, update)
	if errors.Is(err, mongo.ErrUnacknowledgedWrite) {
		return UpdateResult{}, nil
	}
	if err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{Matched: res.MatchedCount, Acknowledged: true}, nil
}

// DeleteOne removes the first document matching filter
func (c *Client) DeleteOne(ctx context.Context, collection string, filter interface{}) (DeleteResult, error) {
	res, err := c.db.Collection(collection).DeleteOne(ctx, filter)
	if errors.Is(err, mongo.ErrUnacknowledgedWrite) {
		return DeleteResult{}, nil
	}
	if err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{Deleted: res.DeletedCount, Acknowledged: true}, nil
}

// DeleteMany removes every document matching filter and returns the count
func (c *Client) DeleteMany(ctx context.Context, collection string, filter interface{}) (int64, error) {
	res, err := c.db.Collection(collection).DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// InsertMany inserts docs into collection
func (c *Client) InsertMany(ctx context.Context, collection string, docs []interface{}) error {
	_, err := c.db.Collection(collection).InsertMany(ctx, docs)
	return err
}

// CreateIndexes creates the given indexes on collection. Existing indexes
// with the same definition are left alone.
func (c *Client) CreateIndexes(ctx context.Context, collection string, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	_, err := c.db.Collection(collection).Indexes().CreateMany(ctx, models)
	return err
}

// Close disconnects from MongoDB
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Ping verifies the connection to the primary
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}
