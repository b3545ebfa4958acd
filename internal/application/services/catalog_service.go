package services

import (
	"context"

	"github.com/zatekoja/carefinder/internal/domain/entities"
	"github.com/zatekoja/carefinder/internal/domain/repositories"
)

// CatalogService lists the insurers and specialties used as search filters
type CatalogService struct {
	insurers    repositories.InsurerRepository
	specialties repositories.SpecialtyRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(insurers repositories.InsurerRepository, specialties repositories.SpecialtyRepository) *CatalogService {
	return &CatalogService{insurers: insurers, specialties: specialties}
}

// Insurers returns every insurer sorted by name
func (s *CatalogService) Insurers(ctx context.Context) ([]*entities.Insurer, error) {
	return s.insurers.FindAll(ctx)
}

// Specialties returns every specialty sorted by name
func (s *CatalogService) Specialties(ctx context.Context) ([]*entities.Specialty, error) {
	return s.specialties.FindAll(ctx)
}
