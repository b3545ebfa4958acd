package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/zatekoja/carefinder/internal/adapters/database/mapper"
	"github.com/zatekoja/carefinder/internal/adapters/database/pipeline"
	"github.com/zatekoja/carefinder/internal/domain/entities"
	"github.com/zatekoja/carefinder/internal/domain/repositories"
	"github.com/zatekoja/carefinder/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/carefinder/pkg/errors"
)

var byName = []pipeline.SortKey{{Field: "name", Direction: 1}, {Field: "_id", Direction: 1}}

// InsurerAdapter implements the InsurerRepository interface
type InsurerAdapter struct {
	base
}

// NewInsurerAdapter creates a new insurer adapter
func NewInsurerAdapter(store Store, queryTimeout time.Duration, metrics *observability.Metrics) *InsurerAdapter {
	return &InsurerAdapter{base{store: store, queryTimeout: queryTimeout, metrics: metrics}}
}

var _ repositories.InsurerRepository = (*InsurerAdapter)(nil)

// FindAll returns every insurer sorted by name
func (a *InsurerAdapter) FindAll(ctx context.Context) ([]*entities.Insurer, error) {
	p := pipeline.NewBuilder().AddSortStage(byName...).Build()
	docs, err := a.aggregate(ctx, pipeline.CollectionInsurers, "insurer.find_all", p)
	if err != nil {
		return nil, err
	}

	out := make([]*entities.Insurer, 0, len(docs))
	for _, raw := range docs {
		var doc mapper.InsurerDocument
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, apperrors.NewInternalError("failed to decode insurer", err)
		}
		ins := mapper.InsurerToDomain(&doc)
		out = append(out, &ins)
	}
	return out, nil
}

// SpecialtyAdapter implements the SpecialtyRepository interface
type SpecialtyAdapter struct {
	base
}

// NewSpecialtyAdapter creates a new specialty adapter
func NewSpecialtyAdapter(store Store, queryTimeout time.Duration, metrics *observability.Metrics) *SpecialtyAdapter {
	return &SpecialtyAdapter{base{store: store, queryTimeout: queryTimeout, metrics: metrics}}
}

var _ repositories.SpecialtyRepository = (*SpecialtyAdapter)(nil)

// FindAll returns every catalog specialty sorted by name
func (a *SpecialtyAdapter) FindAll(ctx context.Context) ([]*entities.Specialty, error) {
	p := pipeline.NewBuilder().
		AddSortStage(byName...).
		AddProjectStage(pipeline.ProjectField{Name: "name", Include: true}).
		Build()
	docs, err := a.aggregate(ctx, pipeline.CollectionSpecialties, "specialty.find_all", p)
	if err != nil {
		return nil, err
	}

	out := make([]*entities.Specialty, 0, len(docs))
	for _, raw := range docs {
		var doc mapper.SpecialtyDocument
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, apperrors.NewInternalError("failed to decode specialty", err)
		}
		s := mapper.SpecialtyToDomain(&doc)
		out = append(out, &s)
	}
	return out, nil
}
