package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zatekoja/carefinder/internal/domain/entities"
	"github.com/zatekoja/carefinder/internal/domain/providers"
	"github.com/zatekoja/carefinder/internal/domain/repositories"
	"github.com/zatekoja/carefinder/internal/infrastructure/observability"
)

// Cache key patterns cleared on every facility or review write
const (
	facilityKeyPattern   = "facility:*"
	facilitiesKeyPattern = "facilities:*"
)

// CachedFacilityAdapter wraps a FacilityRepository with a read-through cache
type CachedFacilityAdapter struct {
	adapter   repositories.FacilityRepository
	cache     providers.CacheProvider
	detailTTL time.Duration
	searchTTL time.Duration
	metrics   *observability.Metrics
}

// NewCachedFacilityAdapter creates a new cached facility adapter. metrics may be nil.
func NewCachedFacilityAdapter(adapter repositories.FacilityRepository, cache providers.CacheProvider, detailTTL, searchTTL time.Duration, metrics *observability.Metrics) *CachedFacilityAdapter {
	return &CachedFacilityAdapter{
		adapter:   adapter,
		cache:     cache,
		detailTTL: detailTTL,
		searchTTL: searchTTL,
		metrics:   metrics,
	}
}

var _ repositories.FacilityRepository = (*CachedFacilityAdapter)(nil)

func facilityByNameKey(name string) string {
	return fmt.Sprintf("facility:name:%s", name)
}

func facilityByIDKey(id string) string {
	return fmt.Sprintf("facility:id:%s", id)
}

func facilitiesKey(kind string, params interface{}) string {
	data, _ := json.Marshal(params)
	return fmt.Sprintf("facilities:%s:%s", kind, data)
}

type searchKey struct {
	Criteria repositories.FacilitySearchCriteria `json:"criteria"`
	Page     *repositories.Pagination            `json:"page,omitempty"`
}

// lookup fills dst from the cache and reports whether it did
func (a *CachedFacilityAdapter) lookup(ctx context.Context, key string, dst interface{}) bool {
	cached, err := a.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		if a.metrics != nil {
			observability.RecordCacheMiss(ctx, a.metrics, key)
		}
		return false
	}
	if err := json.Unmarshal(cached, dst); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		return false
	}
	if a.metrics != nil {
		observability.RecordCacheHit(ctx, a.metrics, key)
	}
	return true
}

func (a *CachedFacilityAdapter) store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, data, ttl); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("failed to cache value")
	}
}

// FindByDistanceSpecialtyInsurerPaged searches with caching
func (a *CachedFacilityAdapter) FindByDistanceSpecialtyInsurerPaged(ctx context.Context, criteria repositories.FacilitySearchCriteria, page repositories.Pagination) (*entities.FacilityPage, error) {
	key := facilitiesKey("search", searchKey{Criteria: criteria, Page: &page})

	var cached entities.FacilityPage
	if a.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	result, err := a.adapter.FindByDistanceSpecialtyInsurerPaged(ctx, criteria, page)
	if err != nil {
		return nil, err
	}
	a.store(ctx, key, result, a.searchTTL)
	return result, nil
}

// FindByDistanceSpecialtyInsurer searches with caching
func (a *CachedFacilityAdapter) FindByDistanceSpecialtyInsurer(ctx context.Context, criteria repositories.FacilitySearchCriteria) ([]*entities.Facility, error) {
	key := facilitiesKey("search", searchKey{Criteria: criteria})

	var cached []*entities.Facility
	if a.lookup(ctx, key, &cached) {
		return cached, nil
	}

	result, err := a.adapter.FindByDistanceSpecialtyInsurer(ctx, criteria)
	if err != nil {
		return nil, err
	}
	a.store(ctx, key, result, a.searchTTL)
	return result, nil
}

// FindByName retrieves a facility by name with caching. Misses on the store
// are not cached.
func (a *CachedFacilityAdapter) FindByName(ctx context.Context, name string) (*entities.Facility, error) {
	key := facilityByNameKey(name)

	var cached entities.Facility
	if a.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	facility, err := a.adapter.FindByName(ctx, name)
	if err != nil || facility == nil {
		return facility, err
	}
	a.store(ctx, key, facility, a.detailTTL)
	return facility, nil
}

// FindByID retrieves a facility by ID with caching
func (a *CachedFacilityAdapter) FindByID(ctx context.Context, id string) (*entities.Facility, error) {
	key := facilityByIDKey(id)

	var cached entities.Facility
	if a.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	facility, err := a.adapter.FindByID(ctx, id)
	if err != nil || facility == nil {
		return facility, err
	}
	a.store(ctx, key, facility, a.detailTTL)
	return facility, nil
}

// FindAllPaged browses the catalog with caching
func (a *CachedFacilityAdapter) FindAllPaged(ctx context.Context, sorts entities.SortCriteria, page repositories.Pagination) (*entities.FacilityPage, error) {
	key := facilitiesKey("list", searchKey{Criteria: repositories.FacilitySearchCriteria{Sorts: sorts}, Page: &page})

	var cached entities.FacilityPage
	if a.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	result, err := a.adapter.FindAllPaged(ctx, sorts, page)
	if err != nil {
		return nil, err
	}
	a.store(ctx, key, result, a.searchTTL)
	return result, nil
}

// FindAll returns the whole catalog with caching
func (a *CachedFacilityAdapter) FindAll(ctx context.Context, sorts entities.SortCriteria) ([]*entities.Facility, error) {
	key := facilitiesKey("list", searchKey{Criteria: repositories.FacilitySearchCriteria{Sorts: sorts}})

	var cached []*entities.Facility
	if a.lookup(ctx, key, &cached) {
		return cached, nil
	}

	result, err := a.adapter.FindAll(ctx, sorts)
	if err != nil {
		return nil, err
	}
	a.store(ctx, key, result, a.searchTTL)
	return result, nil
}

// Create creates a facility and invalidates cached listings
func (a *CachedFacilityAdapter) Create(ctx context.Context, facility *entities.Facility) (string, error) {
	id, err := a.adapter.Create(ctx, facility)
	if err != nil {
		return "", err
	}
	if id != "" {
		a.Invalidate(ctx)
	}
	return id, nil
}

// Update updates a facility and invalidates cached reads
func (a *CachedFacilityAdapter) Update(ctx context.Context, id string, facility *entities.Facility) (bool, error) {
	ok, err := a.adapter.Update(ctx, id, facility)
	if err != nil {
		return false, err
	}
	if ok {
		a.Invalidate(ctx)
	}
	return ok, nil
}

// Delete deletes a facility and invalidates cached reads
func (a *CachedFacilityAdapter) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := a.adapter.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		a.Invalidate(ctx)
	}
	return ok, nil
}

// Invalidate drops every cached facility read. A facility change can move
// it in or out of any listing, and a review changes rating everywhere.
func (a *CachedFacilityAdapter) Invalidate(ctx context.Context) {
	for _, pattern := range []string{facilityKeyPattern, facilitiesKeyPattern} {
		if err := a.cache.DeletePattern(ctx, pattern); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("pattern", pattern).Msg("failed to invalidate facility cache")
		}
	}
}
