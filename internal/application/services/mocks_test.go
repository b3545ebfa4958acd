package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/carefinder/internal/domain/entities"
	"github.com/zatekoja/carefinder/internal/domain/repositories"
)

type MockFacilityRepository struct {
	mock.Mock
}

func (m *MockFacilityRepository) FindByDistanceSpecialtyInsurerPaged(ctx context.Context, c repositories.FacilitySearchCriteria, p repositories.Pagination) (*entities.FacilityPage, error) {
	args := m.Called(ctx, c, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FacilityPage), args.Error(1)
}

func (m *MockFacilityRepository) FindByDistanceSpecialtyInsurer(ctx context.Context, c repositories.FacilitySearchCriteria) ([]*entities.Facility, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Facility), args.Error(1)
}

func (m *MockFacilityRepository) FindByName(ctx context.Context, name string) (*entities.Facility, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Facility), args.Error(1)
}

func (m *MockFacilityRepository) FindByID(ctx context.Context, id string) (*entities.Facility, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Facility), args.Error(1)
}

func (m *MockFacilityRepository) FindAllPaged(ctx context.Context, s entities.SortCriteria, p repositories.Pagination) (*entities.FacilityPage, error) {
	args := m.Called(ctx, s, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FacilityPage), args.Error(1)
}

func (m *MockFacilityRepository) FindAll(ctx context.Context, s entities.SortCriteria) ([]*entities.Facility, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Facility), args.Error(1)
}

func (m *MockFacilityRepository) Create(ctx context.Context, f *entities.Facility) (string, error) {
	args := m.Called(ctx, f)
	return args.String(0), args.Error(1)
}

func (m *MockFacilityRepository) Update(ctx context.Context, id string, f *entities.Facility) (bool, error) {
	args := m.Called(ctx, id, f)
	return args.Bool(0), args.Error(1)
}

func (m *MockFacilityRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockSearchRepository struct {
	mock.Mock
}

func (m *MockSearchRepository) Suggest(ctx context.Context, prefix string, limit int) ([]*entities.Facility, error) {
	args := m.Called(ctx, prefix, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Facility), args.Error(1)
}

func (m *MockSearchRepository) Index(ctx context.Context, f *entities.Facility) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockSearchRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, r *entities.Review) (string, error) {
	args := m.Called(ctx, r)
	return args.String(0), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, id string, r *entities.Review) (bool, error) {
	args := m.Called(ctx, id, r)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

type stubInsurers []*entities.Insurer

func (s stubInsurers) FindAll(context.Context) ([]*entities.Insurer, error) { return s, nil }

type stubSpecialties []*entities.Specialty

func (s stubSpecialties) FindAll(context.Context) ([]*entities.Specialty, error) { return s, nil }
