package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/carefinder/internal/domain/entities"
)

// ReviewService is the review behaviour the handler depends on
type ReviewService interface {
	Create(ctx context.Context, review *entities.Review) (string, error)
	Update(ctx context.Context, id string, review *entities.Review) error
	Delete(ctx context.Context, id string) error
}

// ReviewRequest is the body of a review write
type ReviewRequest struct {
	UserID     string `json:"user_id"`
	FacilityID string `json:"facility_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

// ReviewHandler handles review-related HTTP requests
type ReviewHandler struct {
	service ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// CreateReview handles POST /api/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	id, err := h.service.Create(r.Context(), &entities.Review{
		UserID:     req.UserID,
		FacilityID: req.FacilityID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// UpdateReview handles PUT /api/reviews/{id}. Only rating and comment change.
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	err := h.service.Update(r.Context(), r.PathValue("id"), &entities.Review{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteReview handles DELETE /api/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
