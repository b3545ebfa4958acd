package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/carefinder/internal/adapters/database/mapper"
	"github.com/zatekoja/carefinder/internal/api/responses"
	"github.com/zatekoja/carefinder/internal/domain/entities"
)

// CatalogService lists the search filter values
type CatalogService interface {
	Insurers(ctx context.Context) ([]*entities.Insurer, error)
	Specialties(ctx context.Context) ([]*entities.Specialty, error)
}

// CatalogHandler serves the insurer and specialty catalogs
type CatalogHandler struct {
	service CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListInsurers handles GET /api/insurers
func (h *CatalogHandler) ListInsurers(w http.ResponseWriter, r *http.Request) {
	insurers, err := h.service.Insurers(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	out := make([]responses.InsurerResponse, 0, len(insurers))
	for _, i := range insurers {
		out = append(out, mapper.InsurerToResponse(i))
	}
	respondWithJSON(w, http.StatusOK, out)
}

// ListSpecialties handles GET /api/specialties
func (h *CatalogHandler) ListSpecialties(w http.ResponseWriter, r *http.Request) {
	specialties, err := h.service.Specialties(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	out := make([]responses.SpecialtyResponse, 0, len(specialties))
	for _, s := range specialties {
		out = append(out, mapper.SpecialtyToResponse(s))
	}
	respondWithJSON(w, http.StatusOK, out)
}
