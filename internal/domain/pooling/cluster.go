package pooling

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftbridge/backend/internal/domain/shared"
	"github.com/craftbridge/backend/internal/domain/shared/valueobject"
)

// DefaultMaxClusterSize caps how many orders a single consolidated
// shipment may carry.
const DefaultMaxClusterSize = 20

// Cluster is a group of orders sharing an origin region and destination,
// eligible to be pooled into one shipment.
type Cluster struct {
	Origin             valueobject.Region `json:"origin"`
	DestinationCountry string             `json:"destination_country"`
	OrderIDs           []uuid.UUID        `json:"order_ids"`
	TotalWeightKg      decimal.Decimal    `json:"total_weight_kg"`
}

// PlanClusters groups open orders by (origin region, destination
// country) and splits oversized groups into chunks of at most
// maxClusterSize, preserving creation order within each group. Groups
// are emitted in a deterministic key order.
func PlanClusters(orders []*PoolableOrder, maxClusterSize int) ([]Cluster, error) {
	if maxClusterSize <= 0 {
		return nil, shared.ErrConfiguration.WithDetails("max cluster size must be positive")
	}

	groups := make(map[string][]*PoolableOrder)
	for _, order := range orders {
		if !order.IsOpenForPooling() {
			continue
		}
		key := order.Origin.Key() + "|" + strings.ToUpper(order.DestinationCountry)
		groups[key] = append(groups[key], order)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var clusters []Cluster
	for _, key := range keys {
		members := groups[key]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].CreatedAt.Before(members[j].CreatedAt)
		})
		for start := 0; start < len(members); start += maxClusterSize {
			end := start + maxClusterSize
			if end > len(members) {
				end = len(members)
			}
			chunk := members[start:end]
			cluster := Cluster{
				Origin:             chunk[0].Origin,
				DestinationCountry: chunk[0].DestinationCountry,
				OrderIDs:           make([]uuid.UUID, 0, len(chunk)),
				TotalWeightKg:      decimal.Zero,
			}
			for _, order := range chunk {
				cluster.OrderIDs = append(cluster.OrderIDs, order.ID)
				cluster.TotalWeightKg = cluster.TotalWeightKg.Add(order.WeightKg)
			}
			clusters = append(clusters, cluster)
		}
	}
	return clusters, nil
}

// RegionAnalytics reports historical and projected pooling savings for
// a region over a trailing window. Read-side only.
type RegionAnalytics struct {
	Region             string          `json:"region"`
	ArtisanCount       int64           `json:"artisan_count"`
	OrdersLast30Days   int64           `json:"orders_last_30_days"`
	TotalShippingSpent decimal.Decimal `json:"total_shipping_spent"`
	PotentialSavings   decimal.Decimal `json:"potential_savings"`
	NearestHub         string          `json:"nearest_hub"`
	HubUsedDefault     bool            `json:"hub_used_default"`
	ActiveClusters     int64           `json:"active_clusters"`
	AvgSavingsPercent  decimal.Decimal `json:"avg_savings_percent"`
}

// AnalyticsConfig holds the constants used by region analytics
type AnalyticsConfig struct {
	WindowDays     int             `mapstructure:"window_days"`
	AvgSavingsRate decimal.Decimal `mapstructure:"avg_savings_rate"`
}

// DefaultAnalyticsConfig returns the standard analytics constants:
// a 30-day trailing window and the historical 40% average savings rate.
func DefaultAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{
		WindowDays:     30,
		AvgSavingsRate: decimal.NewFromFloat(0.40),
	}
}

// Validate rejects non-positive window or out-of-range savings rate
func (c AnalyticsConfig) Validate() error {
	if c.WindowDays <= 0 {
		return shared.ErrConfiguration.WithDetails("analytics window_days must be positive")
	}
	if !c.AvgSavingsRate.IsPositive() || c.AvgSavingsRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return shared.ErrConfiguration.WithDetails("avg_savings_rate must be in (0, 1)")
	}
	return nil
}
