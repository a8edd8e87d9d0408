package pooling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftbridge/backend/internal/domain/shared"
	"github.com/craftbridge/backend/internal/domain/shared/valueobject"
)

func orderInRegion(t *testing.T, district, state, destination string, createdAt time.Time) *PoolableOrder {
	t.Helper()
	origin, err := valueobject.NewRegion(district, state)
	require.NoError(t, err)
	order, err := NewPoolableOrder(uuid.New(), uuid.New(), origin, destination, "addr", 2,
		fixedWeightEstimator{perUnit: decimal.NewFromFloat(0.5)})
	require.NoError(t, err)
	order.CreatedAt = createdAt
	return order
}

func TestPlanClusters(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("groups by region and destination", func(t *testing.T) {
		orders := []*PoolableOrder{
			orderInRegion(t, "Jaipur", "Rajasthan", "US", base),
			orderInRegion(t, "Jaipur", "Rajasthan", "US", base.Add(time.Hour)),
			orderInRegion(t, "Jaipur", "Rajasthan", "UK", base),
			orderInRegion(t, "Kutch", "Gujarat", "US", base),
		}
		clusters, err := PlanClusters(orders, DefaultMaxClusterSize)
		require.NoError(t, err)
		require.Len(t, clusters, 3)

		sizes := make(map[string]int)
		for _, cluster := range clusters {
			sizes[cluster.Origin.Key()+"|"+cluster.DestinationCountry] = len(cluster.OrderIDs)
		}
		assert.Equal(t, 2, sizes["jaipur|rajasthan|US"])
		assert.Equal(t, 1, sizes["jaipur|rajasthan|UK"])
		assert.Equal(t, 1, sizes["kutch|gujarat|US"])
	})

	t.Run("splits oversized groups", func(t *testing.T) {
		var orders []*PoolableOrder
		for i := 0; i < 45; i++ {
			orders = append(orders, orderInRegion(t, "Jaipur", "Rajasthan", "US", base.Add(time.Duration(i)*time.Minute)))
		}
		clusters, err := PlanClusters(orders, 20)
		require.NoError(t, err)
		require.Len(t, clusters, 3)
		assert.Len(t, clusters[0].OrderIDs, 20)
		assert.Len(t, clusters[1].OrderIDs, 20)
		assert.Len(t, clusters[2].OrderIDs, 5)

		// earliest orders land in the first chunk
		assert.Equal(t, orders[0].ID, clusters[0].OrderIDs[0])
	})

	t.Run("skips orders no longer open", func(t *testing.T) {
		open := orderInRegion(t, "Jaipur", "Rajasthan", "US", base)
		shipped := orderInRegion(t, "Jaipur", "Rajasthan", "US", base)
		shipped.Status = OrderStatusShipped

		clusters, err := PlanClusters([]*PoolableOrder{open, shipped}, 20)
		require.NoError(t, err)
		require.Len(t, clusters, 1)
		assert.Equal(t, []uuid.UUID{open.ID}, clusters[0].OrderIDs)
	})

	t.Run("aggregates cluster weight", func(t *testing.T) {
		orders := []*PoolableOrder{
			orderInRegion(t, "Jaipur", "Rajasthan", "US", base),
			orderInRegion(t, "Jaipur", "Rajasthan", "US", base),
		}
		clusters, err := PlanClusters(orders, 20)
		require.NoError(t, err)
		require.Len(t, clusters, 1)
		assert.True(t, clusters[0].TotalWeightKg.Equal(decimal.NewFromInt(2)))
	})

	t.Run("non-positive max size is a configuration error", func(t *testing.T) {
		_, err := PlanClusters(nil, 0)
		require.Error(t, err)
	})
}

func TestAnalyticsConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultAnalyticsConfig().Validate())

	tests := []struct {
		name   string
		config AnalyticsConfig
	}{
		{"zero window", AnalyticsConfig{WindowDays: 0, AvgSavingsRate: decimal.NewFromFloat(0.4)}},
		{"zero savings rate", AnalyticsConfig{WindowDays: 30, AvgSavingsRate: decimal.Zero}},
		{"savings rate of one", AnalyticsConfig{WindowDays: 30, AvgSavingsRate: decimal.NewFromInt(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			require.Error(t, err)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, shared.ErrConfiguration.Code, domainErr.Code)
		})
	}
}

func TestEligibilityQuery_Window(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	query := EligibilityQuery{WindowDays: 7, Now: now}

	assert.Equal(t, now.AddDate(0, 0, -7), query.WindowStart())
	assert.Equal(t, now.AddDate(0, 0, 7), query.WindowEnd())
}
