package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/carefinder/internal/adapters/database/pipeline"
	mongoclient "github.com/zatekoja/carefinder/internal/infrastructure/clients/mongo"
	"github.com/zatekoja/carefinder/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/carefinder/pkg/errors"
)

// Store is the part of the document store the adapters use.
// *mongoclient.Client implements it.
type Store interface {
	Aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline) ([]bson.Raw, error)
	InsertOne(ctx context.Context, collection string, doc interface{}) (mongoclient.InsertResult, error)
	UpdateOne(ctx context.Context, collection string, filter, update interface{}) (mongoclient.UpdateResult, error)
	DeleteOne(ctx context.Context, collection string, filter interface{}) (mongoclient.DeleteResult, error)
}

var _ Store = (*mongoclient.Client)(nil)

// DefaultQueryTimeout bounds a single round trip when none is configured
const DefaultQueryTimeout = 15 * time.Second

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// base holds what every adapter needs to reach the store
type base struct {
	store        Store
	queryTimeout time.Duration
	metrics      *observability.Metrics
}

// aggregate validates p and executes it on collection in one round trip
func (b *base) aggregate(ctx context.Context, collection, op string, p pipeline.Pipeline) ([]bson.Raw, error) {
	stages, err := p.ToBSON()
	if err != nil {
		return nil, apperrors.WrapValidationError("invalid "+collection+" query", err)
	}

	ctx, span := observability.StartSpan(ctx, op)
	defer span.End()
	observability.SetSpanAttributes(span,
		attribute.String("db.system", "mongodb"),
		attribute.String("db.mongodb.collection", collection),
		attribute.Int("db.pipeline.stages", len(stages)),
	)

	ctx, cancel := withTimeout(ctx, b.queryTimeout)
	defer cancel()

	start := time.Now()
	docs, err := b.store.Aggregate(ctx, collection, stages)
	b.record(ctx, op, start)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewInternalError("failed to query "+collection, err)
	}
	return docs, nil
}

func (b *base) record(ctx context.Context, op string, start time.Time) {
	if b.metrics != nil {
		observability.RecordDBMetric(ctx, b.metrics, op, time.Since(start))
	}
}
