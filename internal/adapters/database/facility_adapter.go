package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zatekoja/carefinder/internal/adapters/database/mapper"
	"github.com/zatekoja/carefinder/internal/adapters/database/pipeline"
	"github.com/zatekoja/carefinder/internal/domain/entities"
	"github.com/zatekoja/carefinder/internal/domain/repositories"
	"github.com/zatekoja/carefinder/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/carefinder/pkg/errors"
)

// FacilityAdapter implements the FacilityRepository interface on MongoDB
type FacilityAdapter struct {
	base
}

// NewFacilityAdapter creates a new facility adapter. metrics may be nil.
func NewFacilityAdapter(store Store, queryTimeout time.Duration, metrics *observability.Metrics) *FacilityAdapter {
	return &FacilityAdapter{base{store: store, queryTimeout: queryTimeout, metrics: metrics}}
}

var _ repositories.FacilityRepository = (*FacilityAdapter)(nil)

// searchRecipe composes the filters shared by every listing
func searchRecipe(c repositories.FacilitySearchCriteria) *pipeline.FacilityBuilder {
	b := pipeline.NewFacilityBuilder().
		AddGeoStage(c.Longitude, c.Latitude, c.MaxDistance).
		AddRating().
		AddTotalReviews()
	if c.HasReviews {
		b.HasReviews()
	}
	return b.
		MatchTown(c.Town).
		SortBy(c.Sorts).
		MatchesSpecialties(c.Specialties).
		MatchesInsurers(c.Insurers)
}

// FindByDistanceSpecialtyInsurerPaged returns one page of matching facilities
func (a *FacilityAdapter) FindByDistanceSpecialtyInsurerPaged(ctx context.Context, criteria repositories.FacilitySearchCriteria, page repositories.Pagination) (*entities.FacilityPage, error) {
	p := searchRecipe(criteria).WithPagination(page.Page, page.PageSize).Build()
	return a.runPaged(ctx, "facility.search_paged", p)
}

// FindByDistanceSpecialtyInsurer returns every matching facility
func (a *FacilityAdapter) FindByDistanceSpecialtyInsurer(ctx context.Context, criteria repositories.FacilitySearchCriteria) ([]*entities.Facility, error) {
	docs, err := a.aggregate(ctx, pipeline.CollectionFacilities, "facility.search", searchRecipe(criteria).Build())
	if err != nil {
		return nil, err
	}
	return decodeFacilities(docs)
}

// FindByName retrieves a facility by exact name
func (a *FacilityAdapter) FindByName(ctx context.Context, name string) (*entities.Facility, error) {
	b := pipeline.NewFacilityBuilder().MatchName(name)
	return a.findOne(ctx, "facility.find_by_name", b)
}

// FindByID retrieves a facility by ID. An id that is not a valid ObjectID
// cannot match and yields nil, nil.
func (a *FacilityAdapter) FindByID(ctx context.Context, id string) (*entities.Facility, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	b := pipeline.NewFacilityBuilder().MatchID(oid)
	return a.findOne(ctx, "facility.find_by_id", b)
}

// findOne runs the single facility view: the first match by _id, every
// relation joined and nested arrays in a stable order
func (a *FacilityAdapter) findOne(ctx context.Context, op string, b *pipeline.FacilityBuilder) (*entities.Facility, error) {
	p := b.
		FirstMatch().
		WithInsurers().
		WithSpecialties().
		AddRating().
		AddTotalReviews().
		AddFinalProjection().
		Build()

	docs, err := a.aggregate(ctx, pipeline.CollectionFacilities, op, p)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	facilities, err := decodeFacilities(docs[:1])
	if err != nil {
		return nil, err
	}
	return facilities[0], nil
}

// FindAllPaged browses the catalog one page at a time
func (a *FacilityAdapter) FindAllPaged(ctx context.Context, sorts entities.SortCriteria, page repositories.Pagination) (*entities.FacilityPage, error) {
	p := searchRecipe(repositories.FacilitySearchCriteria{Sorts: sorts}).
		WithPagination(page.Page, page.PageSize).
		Build()
	return a.runPaged(ctx, "facility.find_all_paged", p)
}

// FindAll returns the whole catalog
func (a *FacilityAdapter) FindAll(ctx context.Context, sorts entities.SortCriteria) ([]*entities.Facility, error) {
	p := searchRecipe(repositories.FacilitySearchCriteria{Sorts: sorts}).Build()
	docs, err := a.aggregate(ctx, pipeline.CollectionFacilities, "facility.find_all", p)
	if err != nil {
		return nil, err
	}
	return decodeFacilities(docs)
}

// Create creates a new facility
func (a *FacilityAdapter) Create(ctx context.Context, facility *entities.Facility) (string, error) {
	if err := facility.Validate(); err != nil {
		return "", apperrors.WrapValidationError("invalid facility", err)
	}
	doc, err := mapper.FacilityToDocument(facility)
	if err != nil {
		return "", apperrors.WrapValidationError("invalid facility", err)
	}

	ctx, cancel := withTimeout(ctx, a.queryTimeout)
	defer cancel()

	start := time.Now()
	res, err := a.store.InsertOne(ctx, pipeline.CollectionFacilities, doc)
	a.record(ctx, "facility.create", start)
	if err != nil {
		return "", apperrors.NewInternalError("failed to create facility", err)
	}
	if !res.Acknowledged {
		return "", nil
	}

	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	default:
		return fmt.Sprint(id), nil
	}
}

// Update updates a facility's stored fields
func (a *FacilityAdapter) Update(ctx context.Context, id string, facility *entities.Facility) (bool, error) {
	oid, err := mapper.ParseID(id)
	if err != nil {
		return false, apperrors.WrapValidationError("invalid facility id", err)
	}
	if err := facility.Validate(); err != nil {
		return false, apperrors.WrapValidationError("invalid facility", err)
	}

	update := *facility
	update.ID = ""
	doc, err := mapper.FacilityToDocument(&update)
	if err != nil {
		return false, apperrors.WrapValidationError("invalid facility", err)
	}

	ctx, cancel := withTimeout(ctx, a.queryTimeout)
	defer cancel()

	start := time.Now()
	res, err := a.store.UpdateOne(ctx, pipeline.CollectionFacilities, bson.D{{Key: "_id", Value: oid}}, facilityUpdate(doc))
	a.record(ctx, "facility.update", start)
	if err != nil {
		return false, apperrors.NewInternalError("failed to update facility", err)
	}
	return res.Acknowledged && res.Matched > 0, nil
}

// facilityUpdate sets every stored field and unsets the optional ones the
// document leaves out, so clearing a phone or email sticks.
func facilityUpdate(doc *mapper.FacilityDocument) bson.D {
	update := bson.D{{Key: "$set", Value: doc}}

	var unset bson.D
	for _, opt := range []struct {
		field string
		value *string
	}{
		{"phone", doc.Phone},
		{"email", doc.Email},
		{"level", doc.Level},
	} {
		if opt.value == nil {
			unset = append(unset, bson.E{Key: opt.field, Value: ""})
		}
	}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}
	return update
}

// Delete deletes a facility
func (a *FacilityAdapter) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := mapper.ParseID(id)
	if err != nil {
		return false, apperrors.WrapValidationError("invalid facility id", err)
	}

	ctx, cancel := withTimeout(ctx, a.queryTimeout)
	defer cancel()

	start := time.Now()
	res, err := a.store.DeleteOne(ctx, pipeline.CollectionFacilities, bson.D{{Key: "_id", Value: oid}})
	a.record(ctx, "facility.delete", start)
	if err != nil {
		return false, apperrors.NewInternalError("failed to delete facility", err)
	}
	return res.Acknowledged && res.Deleted > 0, nil
}

func (a *FacilityAdapter) runPaged(ctx context.Context, op string, p pipeline.Pipeline) (*entities.FacilityPage, error) {
	docs, err := a.aggregate(ctx, pipeline.CollectionFacilities, op, p)
	if err != nil {
		return nil, err
	}
	return decodePage(docs)
}

func decodeFacilities(docs []bson.Raw) ([]*entities.Facility, error) {
	out := make([]*entities.Facility, 0, len(docs))
	for _, raw := range docs {
		var doc mapper.FacilityDocument
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, apperrors.NewInternalError("failed to decode facility", err)
		}
		f, err := mapper.FacilityToDomain(&doc)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to map facility", err)
		}
		out = append(out, f)
	}
	return out, nil
}

// decodePage reads the single {metadata, data} document of a paginated
// pipeline. No document at all means an empty page.
func decodePage(docs []bson.Raw) (*entities.FacilityPage, error) {
	page := &entities.FacilityPage{Results: []*entities.Facility{}}
	if len(docs) == 0 {
		return page, nil
	}

	var result pipeline.PageResult
	if err := bson.Unmarshal(docs[0], &result); err != nil {
		return nil, apperrors.NewInternalError("failed to decode facility page", err)
	}

	facilities, err := decodeFacilities(result.Data)
	if err != nil {
		return nil, err
	}
	page.Results = facilities
	page.Total = result.Total()
	return page, nil
}
