package services

import (
	"context"
	"time"

	"github.com/zatekoja/carefinder/internal/domain/repositories"
	"github.com/zatekoja/carefinder/internal/infrastructure/observability"
)

// CacheWarmingService pre-loads the default facility listing and the detail
// views it links to. Warming reads through the cached repository, which
// stores every result it serves.
type CacheWarmingService struct {
	facilityRepo repositories.FacilityRepository
	pages        int
	pageSize     int
}

// NewCacheWarmingService creates a new cache warming service
func NewCacheWarmingService(facilityRepo repositories.FacilityRepository, pages, pageSize int) *CacheWarmingService {
	if pages < 1 {
		pages = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = 20
	}
	return &CacheWarmingService{
		facilityRepo: facilityRepo,
		pages:        pages,
		pageSize:     pageSize,
	}
}

// WarmCache reads the first pages of the default listing and each listed
// facility's detail view. It returns the number of detail views loaded.
func (s *CacheWarmingService) WarmCache(ctx context.Context) int {
	logger := observability.LoggerFromContext(ctx)
	warmed := 0

	for page := 1; page <= s.pages; page++ {
		result, err := s.facilityRepo.FindAllPaged(ctx, nil, repositories.Pagination{Page: page, PageSize: s.pageSize})
		if err != nil {
			logger.Warn().Err(err).Int("page", page).Msg("failed to warm facility listing")
			continue
		}

		for _, f := range result.Results {
			if _, err := s.facilityRepo.FindByName(ctx, f.Name); err != nil {
				logger.Warn().Err(err).Str("facility", f.Name).Msg("failed to warm facility detail")
				continue
			}
			warmed++
		}

		if page*s.pageSize >= result.Total {
			break
		}
	}

	logger.Info().Int("facilities", warmed).Msg("cache warming completed")
	return warmed
}

// StartPeriodicWarming warms once, then again every interval until ctx is done
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	s.WarmCache(ctx)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				observability.LoggerFromContext(ctx).Info().Msg("stopping cache warming")
				return
			case <-ticker.C:
				s.WarmCache(ctx)
			}
		}
	}()
}
