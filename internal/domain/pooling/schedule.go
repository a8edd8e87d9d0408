package pooling

import (
	"time"

	"github.com/google/uuid"

	"github.com/craftbridge/backend/internal/domain/shared"
)

// PickupSchedule is a quoted timeline for a pooled shipment. It is
// derived per request and never persisted on its own.
type PickupSchedule struct {
	PickupStart       time.Time `json:"pickup_start"`
	PickupDaysNeeded  int       `json:"pickup_days_needed"`
	ConsolidationAt   string    `json:"consolidation_at"`
	ConsolidationDate time.Time `json:"consolidation_date"`
	ShipDate          time.Time `json:"ship_date"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
}

// ScheduleConfig holds the capacity and duration constants used to
// derive schedules. Validated once at startup.
type ScheduleConfig struct {
	PickupsPerDay int `mapstructure:"pickups_per_day"`
	TransitDays   int `mapstructure:"transit_days"`
}

// DefaultScheduleConfig returns the standard scheduling constants:
// 3 artisan pickups per day and 7 days of international transit.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{PickupsPerDay: 3, TransitDays: 7}
}

// Validate rejects zero or negative capacity constants. Misconfiguration
// is fatal at startup, never a per-request condition.
func (c ScheduleConfig) Validate() error {
	if c.PickupsPerDay <= 0 {
		return shared.ErrConfiguration.WithDetails("pickups_per_day must be positive")
	}
	if c.TransitDays <= 0 {
		return shared.ErrConfiguration.WithDetails("transit_days must be positive")
	}
	return nil
}

// ScheduleEstimator derives pickup/consolidation/ship/delivery dates for
// a cluster. All arithmetic is calendar days; there is no business-day
// logic.
type ScheduleEstimator struct {
	config ScheduleConfig
	now    func() time.Time
}

// NewScheduleEstimator creates an estimator with the given constants.
// Returns a configuration error for non-positive capacity.
func NewScheduleEstimator(config ScheduleConfig) (*ScheduleEstimator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ScheduleEstimator{config: config, now: time.Now}, nil
}

// WithClock overrides the time source, for deterministic tests
func (e *ScheduleEstimator) WithClock(now func() time.Time) *ScheduleEstimator {
	e.now = now
	return e
}

// Estimate derives the pickup schedule for a cluster consolidating at
// the given hub. Pickups start tomorrow; the number of pickup days is
// the distinct artisan count divided by the daily pickup capacity,
// rounded up.
func (e *ScheduleEstimator) Estimate(orders []OrderWeight, hub Hub) (*PickupSchedule, error) {
	if len(orders) == 0 {
		return nil, shared.ErrInvalidInput.WithDetails("cannot estimate a schedule for an empty cluster")
	}

	artisans := make(map[uuid.UUID]struct{}, len(orders))
	for _, order := range orders {
		artisans[order.ArtisanID] = struct{}{}
	}
	pickupDays := (len(artisans) + e.config.PickupsPerDay - 1) / e.config.PickupsPerDay

	pickupStart := e.now().AddDate(0, 0, 1)
	consolidation := pickupStart.AddDate(0, 0, pickupDays)
	shipDate := consolidation.AddDate(0, 0, 1)
	delivery := shipDate.AddDate(0, 0, e.config.TransitDays)

	return &PickupSchedule{
		PickupStart:       pickupStart,
		PickupDaysNeeded:  pickupDays,
		ConsolidationAt:   hub.City,
		ConsolidationDate: consolidation,
		ShipDate:          shipDate,
		EstimatedDelivery: delivery,
	}, nil
}
