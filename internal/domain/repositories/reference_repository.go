package repositories

import (
	"context"

	"github.com/zatekoja/carefinder/internal/domain/entities"
)

// InsurerRepository reads the insurer catalog
type InsurerRepository interface {
	// FindAll returns every insurer sorted by name
	FindAll(ctx context.Context) ([]*entities.Insurer, error)
}

// SpecialtyRepository reads the specialty catalog
type SpecialtyRepository interface {
	// FindAll returns every specialty sorted by name, without schedules
	FindAll(ctx context.Context) ([]*entities.Specialty, error)
}

// ReviewRepository writes facility reviews. Ratings are validated before
// anything reaches the store.
type ReviewRepository interface {
	// Create stores a review and returns its id, empty when unacknowledged
	Create(ctx context.Context, review *entities.Review) (string, error)

	// Update replaces a review's rating and comment
	Update(ctx context.Context, id string, review *entities.Review) (bool, error)

	// Delete removes a review
	Delete(ctx context.Context, id string) (bool, error)
}
