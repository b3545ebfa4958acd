package services

import (
	"context"
	"fmt"

	"github.com/zatekoja/carefinder/internal/domain/entities"
	"github.com/zatekoja/carefinder/internal/domain/repositories"
	apperrors "github.com/zatekoja/carefinder/pkg/errors"
)

// CacheInvalidator drops cached facility reads. Reviews change ratings and
// review counts, so every review write invalidates.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// ReviewService handles business logic for reviews
type ReviewService struct {
	repo        repositories.ReviewRepository
	invalidator CacheInvalidator
}

// NewReviewService creates a new review service. invalidator may be nil
// when caching is disabled.
func NewReviewService(repo repositories.ReviewRepository, invalidator CacheInvalidator) *ReviewService {
	return &ReviewService{repo: repo, invalidator: invalidator}
}

// Create validates and stores a review
func (s *ReviewService) Create(ctx context.Context, review *entities.Review) (string, error) {
	if err := review.Validate(); err != nil {
		return "", apperrors.WrapValidationError("invalid review", err)
	}

	id, err := s.repo.Create(ctx, review)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", apperrors.NewUnacknowledgedError("review creation was not acknowledged")
	}
	review.ID = id

	s.invalidate(ctx)
	return id, nil
}

// Update changes a review's rating and comment
func (s *ReviewService) Update(ctx context.Context, id string, review *entities.Review) error {
	if review.Rating < entities.MinReviewRating || review.Rating > entities.MaxReviewRating {
		return apperrors.NewValidationError(fmt.Sprintf("rating must be between %d and %d, got %d",
			entities.MinReviewRating, entities.MaxReviewRating, review.Rating))
	}

	ok, err := s.repo.Update(ctx, id, review)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewUnacknowledgedError(fmt.Sprintf("update of review %s was not confirmed", id))
	}

	s.invalidate(ctx)
	return nil
}

// Delete removes a review
func (s *ReviewService) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewUnacknowledgedError(fmt.Sprintf("deletion of review %s was not confirmed", id))
	}

	s.invalidate(ctx)
	return nil
}

func (s *ReviewService) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
}
