package database_test

import (
	"context"
	"errors"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/carefinder/internal/adapters/database"
	"github.com/zatekoja/carefinder/internal/domain/entities"
	"github.com/zatekoja/carefinder/internal/domain/providers"
	"github.com/zatekoja/carefinder/internal/domain/repositories"
)

type memoryCache struct {
	mu      sync.Mutex
	items   map[string][]byte
	failGet error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet != nil {
		return nil, c.failGet
	}
	v, ok := c.items[key]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.items {
		if ok, _ := path.Match(pattern, k); ok {
			delete(c.items, k)
		}
	}
	return nil
}

func (c *memoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok, nil
}

func (c *memoryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

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

func newCached(repo *MockFacilityRepository, cache *memoryCache) *database.CachedFacilityAdapter {
	return database.NewCachedFacilityAdapter(repo, cache, time.Minute, time.Minute, nil)
}

func TestCachedFacilityAdapter_FindByName(t *testing.T) {
	ctx := context.Background()

	t.Run("second read is served from cache", func(t *testing.T) {
		repo := new(MockFacilityRepository)
		cache := newMemoryCache()
		rating := 4.0
		facility := &entities.Facility{ID: "f1", Name: "Clínica Medellín", Location: entities.NewGeoPoint(-75.56, 6.25), Rating: &rating}
		repo.On("FindByName", mock.Anything, "Clínica Medellín").Return(facility, nil).Once()

		adapter := newCached(repo, cache)
		first, err := adapter.FindByName(ctx, "Clínica Medellín")
		require.NoError(t, err)
		second, err := adapter.FindByName(ctx, "Clínica Medellín")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		repo.AssertNumberOfCalls(t, "FindByName", 1)
	})

	t.Run("a missing facility is not cached", func(t *testing.T) {
		repo := new(MockFacilityRepository)
		cache := newMemoryCache()
		repo.On("FindByName", mock.Anything, "Nada").Return(nil, nil)

		f, err := newCached(repo, cache).FindByName(ctx, "Nada")
		assert.NoError(t, err)
		assert.Nil(t, f)
		assert.Zero(t, cache.len())
	})

	t.Run("a broken cache falls through to the store", func(t *testing.T) {
		repo := new(MockFacilityRepository)
		cache := newMemoryCache()
		cache.failGet = errors.New("redis down")
		repo.On("FindByName", mock.Anything, "X").Return(&entities.Facility{Name: "X"}, nil).Twice()

		adapter := newCached(repo, cache)
		_, err := adapter.FindByName(ctx, "X")
		require.NoError(t, err)
		_, err = adapter.FindByName(ctx, "X")
		require.NoError(t, err)
		repo.AssertNumberOfCalls(t, "FindByName", 2)
	})
}

func TestCachedFacilityAdapter_SearchPagesAreCachedSeparately(t *testing.T) {
	ctx := context.Background()
	repo := new(MockFacilityRepository)
	cache := newMemoryCache()
	criteria := repositories.FacilitySearchCriteria{Insurers: []string{"Sura"}}

	page1 := &entities.FacilityPage{Results: []*entities.Facility{{ID: "a", Name: "A"}}, Total: 2}
	page2 := &entities.FacilityPage{Results: []*entities.Facility{{ID: "b", Name: "B"}}, Total: 2}
	repo.On("FindByDistanceSpecialtyInsurerPaged", mock.Anything, criteria, repositories.Pagination{Page: 1, PageSize: 1}).Return(page1, nil).Once()
	repo.On("FindByDistanceSpecialtyInsurerPaged", mock.Anything, criteria, repositories.Pagination{Page: 2, PageSize: 1}).Return(page2, nil).Once()

	adapter := newCached(repo, cache)
	for i := 0; i < 2; i++ {
		got, err := adapter.FindByDistanceSpecialtyInsurerPaged(ctx, criteria, repositories.Pagination{Page: 1, PageSize: 1})
		require.NoError(t, err)
		assert.Equal(t, "a", got.Results[0].ID)

		got, err = adapter.FindByDistanceSpecialtyInsurerPaged(ctx, criteria, repositories.Pagination{Page: 2, PageSize: 1})
		require.NoError(t, err)
		assert.Equal(t, "b", got.Results[0].ID)
	}
	repo.AssertExpectations(t)
}

func TestCachedFacilityAdapter_WritesInvalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed update clears every facility read", func(t *testing.T) {
		repo := new(MockFacilityRepository)
		cache := newMemoryCache()
		_ = cache.Set(ctx, "facility:name:A", []byte(`{}`), 0)
		_ = cache.Set(ctx, "facilities:search:{}", []byte(`{}`), 0)
		_ = cache.Set(ctx, "other:key", []byte(`{}`), 0)
		repo.On("Update", mock.Anything, "id", mock.Anything).Return(true, nil)

		ok, err := newCached(repo, cache).Update(ctx, "id", &entities.Facility{})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, cache.len())
	})

	t.Run("unconfirmed delete leaves the cache alone", func(t *testing.T) {
		repo := new(MockFacilityRepository)
		cache := newMemoryCache()
		_ = cache.Set(ctx, "facility:name:A", []byte(`{}`), 0)
		repo.On("Delete", mock.Anything, "id").Return(false, nil)

		ok, err := newCached(repo, cache).Delete(ctx, "id")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 1, cache.len())
	})
}
