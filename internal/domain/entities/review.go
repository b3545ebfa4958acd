package entities

import (
	"fmt"
	"time"
)

const (
	MinReviewRating = 1
	MaxReviewRating = 5
)

// Review is a user's rating of a facility. Reviews are the source of truth
// for a facility's aggregate rating and review count.
type Review struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	FacilityID string    `json:"facility_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate must pass before a review is written
func (r *Review) Validate() error {
	if r.Rating < MinReviewRating || r.Rating > MaxReviewRating {
		return fmt.Errorf("rating must be between %d and %d, got %d", MinReviewRating, MaxReviewRating, r.Rating)
	}
	if r.UserID == "" {
		return fmt.Errorf("review user is required")
	}
	if r.FacilityID == "" {
		return fmt.Errorf("review facility is required")
	}
	return nil
}
