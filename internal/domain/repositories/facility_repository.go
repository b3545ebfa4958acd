package repositories

import (
	"context"

	"github.com/zatekoja/carefinder/internal/domain/entities"
)

// FacilityRepository defines the interface for facility data operations.
// Every method issues a single round trip to the store.
type FacilityRepository interface {
	// FindByDistanceSpecialtyInsurerPaged returns one page of matching
	// facilities together with the size of the whole matching set
	FindByDistanceSpecialtyInsurerPaged(ctx context.Context, criteria FacilitySearchCriteria, page Pagination) (*entities.FacilityPage, error)

	// FindByDistanceSpecialtyInsurer returns every matching facility in order
	FindByDistanceSpecialtyInsurer(ctx context.Context, criteria FacilitySearchCriteria) ([]*entities.Facility, error)

	// FindByName returns the facility with exactly this name, with insurers,
	// specialties and reviews. It returns nil, nil when none matches.
	FindByName(ctx context.Context, name string) (*entities.Facility, error)

	// FindByID is FindByName keyed on the id
	FindByID(ctx context.Context, id string) (*entities.Facility, error)

	// FindAllPaged browses the whole catalog one page at a time
	FindAllPaged(ctx context.Context, sorts entities.SortCriteria, page Pagination) (*entities.FacilityPage, error)

	// FindAll returns the whole catalog in order
	FindAll(ctx context.Context, sorts entities.SortCriteria) ([]*entities.Facility, error)

	// Create stores a new facility and returns its id. The id is empty when
	// the store did not acknowledge the write.
	Create(ctx context.Context, facility *entities.Facility) (string, error)

	// Update replaces the stored fields of a facility. It reports false when
	// the write was not acknowledged or nothing matched id.
	Update(ctx context.Context, id string, facility *entities.Facility) (bool, error)

	// Delete removes a facility. It reports false when the write was not
	// acknowledged or nothing matched id.
	Delete(ctx context.Context, id string) (bool, error)
}

// FacilitySearchRepository defines the interface for the facility name
// suggestion index (e.g. Typesense)
type FacilitySearchRepository interface {
	// Suggest returns facilities whose name starts with or contains prefix
	Suggest(ctx context.Context, prefix string, limit int) ([]*entities.Facility, error)

	// Index indexes a facility
	Index(ctx context.Context, facility *entities.Facility) error

	// Delete removes a facility from index
	Delete(ctx context.Context, id string) error
}

// FacilitySearchCriteria holds the optional filters of a facility search.
// Zero values disable the matching filter.
type FacilitySearchCriteria struct {
	// Longitude, Latitude and MaxDistance (meters) enable the distance
	// filter only when all three are set
	Longitude   *float64
	Latitude    *float64
	MaxDistance *float64

	// Specialties and Insurers match by name, any of the listed names
	Specialties []string
	Insurers    []string

	Town       string
	Sorts      entities.SortCriteria
	HasReviews bool
}

// HasLocation reports whether the distance filter applies
func (c FacilitySearchCriteria) HasLocation() bool {
	return c.Longitude != nil && c.Latitude != nil && c.MaxDistance != nil
}

// Filtered reports whether any filter narrows the result set. Sorts alone
// do not count.
func (c FacilitySearchCriteria) Filtered() bool {
	return c.HasLocation() ||
		len(c.Specialties) > 0 ||
		len(c.Insurers) > 0 ||
		c.Town != "" ||
		c.HasReviews
}

// Pagination selects a 1-based page
type Pagination struct {
	Page     int
	PageSize int
}

// Skip returns the number of results before the page
func (p Pagination) Skip() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
