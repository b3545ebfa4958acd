package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/carefinder/internal/adapters/database/mapper"
	"github.com/zatekoja/carefinder/internal/api/responses"
	"github.com/zatekoja/carefinder/internal/domain/entities"
	"github.com/zatekoja/carefinder/internal/domain/repositories"
	apperrors "github.com/zatekoja/carefinder/pkg/errors"
)

const (
	defaultPageSize     = 20
	defaultSuggestLimit = 10
)

// FacilityService is the facility behaviour the handler depends on
type FacilityService interface {
	Search(ctx context.Context, criteria repositories.FacilitySearchCriteria, page repositories.Pagination) (*entities.FacilityPage, error)
	SearchAll(ctx context.Context, criteria repositories.FacilitySearchCriteria) ([]*entities.Facility, error)
	List(ctx context.Context, sorts entities.SortCriteria, page repositories.Pagination) (*entities.FacilityPage, error)
	GetByName(ctx context.Context, name string) (*entities.Facility, error)
	GetByID(ctx context.Context, id string) (*entities.Facility, error)
	Create(ctx context.Context, facility *entities.Facility) (string, error)
	Update(ctx context.Context, id string, facility *entities.Facility) error
	Delete(ctx context.Context, id string) error
	Suggest(ctx context.Context, prefix string, limit int) ([]*entities.Facility, error)
}

// FacilityHandler handles facility-related HTTP requests
type FacilityHandler struct {
	service FacilityService
}

// NewFacilityHandler creates a new facility handler
func NewFacilityHandler(service FacilityService) *FacilityHandler {
	return &FacilityHandler{service: service}
}

// SearchFacilities handles GET /api/facilities
//
// Query parameters: lon, lat, max_distance (meters), specialties, insurers
// (comma separated or repeated), town, sort ("rating:desc,distance"),
// has_reviews, page, page_size. Without any filter the request browses the
// whole catalog.
func (h *FacilityHandler) SearchFacilities(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseSearchCriteria(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	page, err := parsePagination(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var result *entities.FacilityPage
	if criteria.Filtered() {
		result, err = h.service.Search(r.Context(), criteria, page)
	} else {
		result, err = h.service.List(r.Context(), criteria.Sorts, page)
	}
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, mapper.FacilityPageToResponse(result))
}

// SearchAllFacilities handles GET /api/facilities/all. It takes the same
// filters as SearchFacilities and returns every match in order, unpaged.
func (h *FacilityHandler) SearchAllFacilities(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseSearchCriteria(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	facilities, err := h.service.SearchAll(r.Context(), criteria)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	out := make([]responses.FacilityResponse, 0, len(facilities))
	for _, f := range facilities {
		out = append(out, mapper.FacilityToResponse(f))
	}
	respondWithJSON(w, http.StatusOK, out)
}

// GetFacility handles GET /api/facilities/{id}
func (h *FacilityHandler) GetFacility(w http.ResponseWriter, r *http.Request) {
	facility, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, mapper.FacilityToResponse(facility))
}

// GetFacilityByName handles GET /api/facilities/by-name/{name}
func (h *FacilityHandler) GetFacilityByName(w http.ResponseWriter, r *http.Request) {
	facility, err := h.service.GetByName(r.Context(), r.PathValue("name"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, mapper.FacilityToResponse(facility))
}

// SuggestFacilities handles GET /api/facilities/suggest?q=
func (h *FacilityHandler) SuggestFacilities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	prefix := strings.TrimSpace(q.Get("q"))
	if prefix == "" {
		respondWithError(w, http.StatusBadRequest, "q is required")
		return
	}

	limit, err := intParam(q.Get("limit"), defaultSuggestLimit, "limit")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	facilities, err := h.service.Suggest(r.Context(), prefix, limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	out := make([]responses.SuggestionResponse, 0, len(facilities))
	for _, f := range facilities {
		out = append(out, responses.SuggestionResponse{ID: f.ID, Name: f.Name, Town: f.Town})
	}
	respondWithJSON(w, http.StatusOK, out)
}

// CreateFacility handles POST /api/facilities
func (h *FacilityHandler) CreateFacility(w http.ResponseWriter, r *http.Request) {
	facility, err := decodeFacility(w, r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	id, err := h.service.Create(r.Context(), facility)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// UpdateFacility handles PUT /api/facilities/{id}
func (h *FacilityHandler) UpdateFacility(w http.ResponseWriter, r *http.Request) {
	facility, err := decodeFacility(w, r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if err := h.service.Update(r.Context(), r.PathValue("id"), facility); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteFacility handles DELETE /api/facilities/{id}
func (h *FacilityHandler) DeleteFacility(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeFacility(w http.ResponseWriter, r *http.Request) (*entities.Facility, error) {
	var body responses.FacilityResponse
	if err := decodeJSON(w, r, &body); err != nil {
		return nil, err
	}
	facility, err := mapper.FacilityFromResponse(body)
	if err != nil {
		return nil, apperrors.WrapValidationError("invalid facility", err)
	}
	return facility, nil
}

func parseSearchCriteria(r *http.Request) (repositories.FacilitySearchCriteria, error) {
	q := r.URL.Query()
	var criteria repositories.FacilitySearchCriteria
	var err error

	if criteria.Longitude, err = floatParam(q.Get("lon"), "lon"); err != nil {
		return criteria, err
	}
	if criteria.Latitude, err = floatParam(q.Get("lat"), "lat"); err != nil {
		return criteria, err
	}
	if criteria.MaxDistance, err = floatParam(q.Get("max_distance"), "max_distance"); err != nil {
		return criteria, err
	}

	criteria.Specialties = listParam(q["specialties"])
	criteria.Insurers = listParam(q["insurers"])
	criteria.Town = strings.TrimSpace(q.Get("town"))

	if criteria.Sorts, err = entities.ParseSortCriteria(q.Get("sort")); err != nil {
		return criteria, apperrors.WrapValidationError("invalid sort", err)
	}

	if raw := q.Get("has_reviews"); raw != "" {
		if criteria.HasReviews, err = strconv.ParseBool(raw); err != nil {
			return criteria, apperrors.NewValidationError("has_reviews must be a boolean")
		}
	}

	return criteria, nil
}

func parsePagination(r *http.Request) (repositories.Pagination, error) {
	q := r.URL.Query()
	var page repositories.Pagination
	var err error

	if page.Page, err = intParam(q.Get("page"), 1, "page"); err != nil {
		return page, err
	}
	if page.PageSize, err = intParam(q.Get("page_size"), defaultPageSize, "page_size"); err != nil {
		return page, err
	}
	return page, nil
}

func floatParam(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewValidationError(name + " must be a number")
	}
	return &v, nil
}

func intParam(raw string, fallback int, name string) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError(name + " must be an integer")
	}
	return v, nil
}

// listParam accepts both ?x=a&x=b and ?x=a,b
func listParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
