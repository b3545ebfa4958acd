package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zatekoja/carefinder/internal/adapters/database/mapper"
	"github.com/zatekoja/carefinder/internal/adapters/database/pipeline"
	"github.com/zatekoja/carefinder/internal/domain/entities"
	"github.com/zatekoja/carefinder/internal/domain/repositories"
	"github.com/zatekoja/carefinder/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/carefinder/pkg/errors"
)

// ReviewAdapter implements the ReviewRepository interface
type ReviewAdapter struct {
	base
	now func() time.Time
}

// NewReviewAdapter creates a new review adapter
func NewReviewAdapter(store Store, queryTimeout time.Duration, metrics *observability.Metrics) *ReviewAdapter {
	return &ReviewAdapter{
		base: base{store: store, queryTimeout: queryTimeout, metrics: metrics},
		now:  func() time.Time { return time.Now().UTC() },
	}
}

var _ repositories.ReviewRepository = (*ReviewAdapter)(nil)

// Create creates a new review. The rating is checked before the write.
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) (string, error) {
	if err := review.Validate(); err != nil {
		return "", apperrors.WrapValidationError("invalid review", err)
	}

	r := *review
	r.ID = ""
	r.CreatedAt = a.now()
	r.UpdatedAt = r.CreatedAt
	doc, err := mapper.ReviewToDocument(&r)
	if err != nil {
		return "", apperrors.WrapValidationError("invalid review", err)
	}

	ctx, cancel := withTimeout(ctx, a.queryTimeout)
	defer cancel()

	start := time.Now()
	res, err := a.store.InsertOne(ctx, pipeline.CollectionReviews, doc)
	a.record(ctx, "review.create", start)
	if err != nil {
		return "", apperrors.NewInternalError("failed to create review", err)
	}
	if !res.Acknowledged {
		return "", nil
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprint(res.InsertedID), nil
}

// Update changes a review's rating and comment
func (a *ReviewAdapter) Update(ctx context.Context, id string, review *entities.Review) (bool, error) {
	oid, err := mapper.ParseID(id)
	if err != nil {
		return false, apperrors.WrapValidationError("invalid review id", err)
	}
	if review.Rating < entities.MinReviewRating || review.Rating > entities.MaxReviewRating {
		return false, apperrors.NewValidationError(fmt.Sprintf("rating must be between %d and %d, got %d",
			entities.MinReviewRating, entities.MaxReviewRating, review.Rating))
	}

	ctx, cancel := withTimeout(ctx, a.queryTimeout)
	defer cancel()

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "rating", Value: review.Rating},
		{Key: "comment", Value: review.Comment},
		{Key: "updatedAt", Value: a.now()},
	}}}

	start := time.Now()
	res, err := a.store.UpdateOne(ctx, pipeline.CollectionReviews, bson.D{{Key: "_id", Value: oid}}, update)
	a.record(ctx, "review.update", start)
	if err != nil {
		return false, apperrors.NewInternalError("failed to update review", err)
	}
	return res.Acknowledged && res.Matched > 0, nil
}

// Delete deletes a review
func (a *ReviewAdapter) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := mapper.ParseID(id)
	if err != nil {
		return false, apperrors.WrapValidationError("invalid review id", err)
	}

	ctx, cancel := withTimeout(ctx, a.queryTimeout)
	defer cancel()

	start := time.Now()
	res, err := a.store.DeleteOne(ctx, pipeline.CollectionReviews, bson.D{{Key: "_id", Value: oid}})
	a.record(ctx, "review.delete", start)
	if err != nil {
		return false, apperrors.NewInternalError("failed to delete review", err)
	}
	return res.Acknowledged && res.Deleted > 0, nil
}
