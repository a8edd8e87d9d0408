package pooling

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/craftbridge/backend/internal/domain/pooling"
	"github.com/craftbridge/backend/internal/domain/shared"
	"github.com/craftbridge/backend/internal/domain/shared/valueobject"
)

// AnalyticsCache caches serialized analytics reports. Cache failures are
// logged and the report is recomputed; the cache never affects
// correctness.
type AnalyticsCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

const analyticsCachePrefix = "pooling:analytics:"

// AnalyticsService aggregates recent order history per region to report
// historical and projected pooling savings. Read-side only.
type AnalyticsService struct {
	orders    pooling.OrderRepository
	shipments pooling.ShipmentRepository
	artisans  pooling.ArtisanDirectory
	hubs      *pooling.HubDirectory
	config    pooling.AnalyticsConfig
	cache     AnalyticsCache
	cacheTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService. Returns a
// configuration error if the analytics constants are invalid.
func NewAnalyticsService(
	orders pooling.OrderRepository,
	shipments pooling.ShipmentRepository,
	artisans pooling.ArtisanDirectory,
	hubs *pooling.HubDirectory,
	config pooling.AnalyticsConfig,
	logger *zap.Logger,
) (*AnalyticsService, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		orders:    orders,
		shipments: shipments,
		artisans:  artisans,
		hubs:      hubs,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// SetCache installs a report cache with the given TTL
func (s *AnalyticsService) SetCache(cache AnalyticsCache, ttl time.Duration) {
	s.cache = cache
	s.cacheTTL = ttl
}

// WithClock overrides the time source, for deterministic tests
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

// RegionAnalytics reports artisan count, recent order volume, shipping
// spend, and projected pooling savings for a region over the trailing
// window.
func (s *AnalyticsService) RegionAnalytics(ctx context.Context, district, state string) (*RegionAnalyticsResponse, error) {
	region, err := valueobject.NewRegion(district, state)
	if err != nil {
		return nil, shared.ErrInvalidInput.WithDetails(err.Error())
	}

	cacheKey := analyticsCachePrefix + region.Key()
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	since := s.now().AddDate(0, 0, -s.config.WindowDays)

	artisanCount, err := s.artisans.CountByRegion(ctx, region)
	if err != nil {
		return nil, err
	}
	orderCount, err := s.orders.CountByRegionSince(ctx, region, since)
	if err != nil {
		return nil, err
	}
	totalSpent, err := s.orders.SumShippingCostByRegionSince(ctx, region, since)
	if err != nil {
		return nil, err
	}
	activeClusters, err := s.shipments.CountOpenByRegion(ctx, region)
	if err != nil {
		return nil, err
	}

	resolution := s.hubs.Resolve(region.State())
	response := &RegionAnalyticsResponse{
		Region:             region.String(),
		ArtisanCount:       artisanCount,
		OrdersLast30Days:   orderCount,
		TotalShippingSpent: totalSpent.Round(2),
		PotentialSavings:   totalSpent.Mul(s.config.AvgSavingsRate).Round(2),
		NearestHub:         resolution.Hub.City,
		HubUsedDefault:     resolution.UsedDefault,
		ActiveClusters:     activeClusters,
		AvgSavingsPercent:  s.config.AvgSavingsRate.Mul(decimal.NewFromInt(100)),
	}
	s.toCache(ctx, cacheKey, response)
	return response, nil
}

func (s *AnalyticsService) fromCache(ctx context.Context, key string) *RegionAnalyticsResponse {
	if s.cache == nil {
		return nil
	}
	payload, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("analytics cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}
	var response RegionAnalyticsResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		s.logger.Warn("analytics cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil
	}
	return &response
}

func (s *AnalyticsService) toCache(ctx context.Context, key string, response *RegionAnalyticsResponse) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		s.logger.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
}
