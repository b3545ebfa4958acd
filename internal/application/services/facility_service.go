package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/zatekoja/carefinder/internal/domain/entities"
	"github.com/zatekoja/carefinder/internal/domain/repositories"
	"github.com/zatekoja/carefinder/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/carefinder/pkg/errors"
)

// MaxPageSize bounds a single page of facilities
const MaxPageSize = 100

// FacilityService handles business logic for facilities
type FacilityService struct {
	repo       repositories.FacilityRepository
	searchRepo repositories.FacilitySearchRepository
}

// NewFacilityService creates a new facility service. searchRepo may be nil,
// in which case name suggestions are unavailable.
func NewFacilityService(repo repositories.FacilityRepository, searchRepo repositories.FacilitySearchRepository) *FacilityService {
	return &FacilityService{
		repo:       repo,
		searchRepo: searchRepo,
	}
}

func validatePage(page repositories.Pagination) error {
	if page.Page < 1 {
		return apperrors.NewValidationError(fmt.Sprintf("page must be at least 1, got %d", page.Page))
	}
	if page.PageSize < 1 || page.PageSize > MaxPageSize {
		return apperrors.NewValidationError(fmt.Sprintf("page size must be between 1 and %d, got %d", MaxPageSize, page.PageSize))
	}
	return nil
}

func validateCriteria(c repositories.FacilitySearchCriteria) error {
	if c.HasLocation() {
		if err := entities.ValidateCoordinates(*c.Longitude, *c.Latitude); err != nil {
			return apperrors.WrapValidationError("invalid search location", err)
		}
		if *c.MaxDistance <= 0 {
			return apperrors.NewValidationError("max distance must be positive")
		}
	}
	if err := c.Sorts.Validate(); err != nil {
		return apperrors.WrapValidationError("invalid sort", err)
	}
	return nil
}

// Search returns one page of facilities matching criteria
func (s *FacilityService) Search(ctx context.Context, criteria repositories.FacilitySearchCriteria, page repositories.Pagination) (*entities.FacilityPage, error) {
	if err := validateCriteria(criteria); err != nil {
		return nil, err
	}
	if err := validatePage(page); err != nil {
		return nil, err
	}
	return s.repo.FindByDistanceSpecialtyInsurerPaged(ctx, criteria, page)
}

// SearchAll returns every facility matching criteria
func (s *FacilityService) SearchAll(ctx context.Context, criteria repositories.FacilitySearchCriteria) ([]*entities.Facility, error) {
	if err := validateCriteria(criteria); err != nil {
		return nil, err
	}
	return s.repo.FindByDistanceSpecialtyInsurer(ctx, criteria)
}

// List browses the whole catalog
func (s *FacilityService) List(ctx context.Context, sorts entities.SortCriteria, page repositories.Pagination) (*entities.FacilityPage, error) {
	if err := sorts.Validate(); err != nil {
		return nil, apperrors.WrapValidationError("invalid sort", err)
	}
	if err := validatePage(page); err != nil {
		return nil, err
	}
	return s.repo.FindAllPaged(ctx, sorts, page)
}

// GetByName retrieves a facility with its insurers, specialties and reviews
func (s *FacilityService) GetByName(ctx context.Context, name string) (*entities.Facility, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("facility name is required")
	}

	facility, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if facility == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility %q not found", name))
	}
	return facility, nil
}

// GetByID retrieves a facility by ID
func (s *FacilityService) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	facility, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if facility == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility %s not found", id))
	}
	return facility, nil
}

// Create creates a new facility and indexes it
func (s *FacilityService) Create(ctx context.Context, facility *entities.Facility) (string, error) {
	if err := facility.Validate(); err != nil {
		return "", apperrors.WrapValidationError("invalid facility", err)
	}

	id, err := s.repo.Create(ctx, facility)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", apperrors.NewUnacknowledgedError("facility creation was not acknowledged")
	}
	facility.ID = id

	s.index(ctx, facility)
	return id, nil
}

// Update updates a facility and its index entry
func (s *FacilityService) Update(ctx context.Context, id string, facility *entities.Facility) error {
	if err := facility.Validate(); err != nil {
		return apperrors.WrapValidationError("invalid facility", err)
	}

	ok, err := s.repo.Update(ctx, id, facility)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewUnacknowledgedError(fmt.Sprintf("update of facility %s was not confirmed", id))
	}
	facility.ID = id

	s.index(ctx, facility)
	return nil
}

// Delete deletes a facility and removes it from the index
func (s *FacilityService) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewUnacknowledgedError(fmt.Sprintf("deletion of facility %s was not confirmed", id))
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Delete(ctx, id); err != nil {
			// the store is the source of truth; the index catches up on the next rebuild
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("facility_id", id).
				Msg("failed to remove facility from search index")
		}
	}
	return nil
}

// Suggest returns facilities whose name matches prefix
func (s *FacilityService) Suggest(ctx context.Context, prefix string, limit int) ([]*entities.Facility, error) {
	if s.searchRepo == nil {
		return nil, apperrors.NewExternalError("facility suggestions are not available", nil)
	}

	facilities, err := s.searchRepo.Suggest(ctx, prefix, limit)
	if err != nil {
		return nil, apperrors.NewExternalError("facility suggestions failed", err)
	}
	return facilities, nil
}

func (s *FacilityService) index(ctx context.Context, facility *entities.Facility) {
	if s.searchRepo == nil {
		return
	}
	if err := s.searchRepo.Index(ctx, facility); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("facility_id", facility.ID).
			Msg("failed to index facility")
	}
}
