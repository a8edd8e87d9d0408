package weight

import (
	"github.com/shopspring/decimal"

	"github.com/craftbridge/backend/internal/domain/pooling"
)

// DefaultKgPerUnit is the handicraft average used when no catalog weight
// is available for a product.
var DefaultKgPerUnit = decimal.NewFromFloat(0.5)

// UnitCountEstimator estimates order weight from the item count alone,
// at a fixed average weight per unit.
type UnitCountEstimator struct {
	kgPerUnit decimal.Decimal
}

// NewUnitCountEstimator creates an estimator at the default average of
// half a kilogram per unit
func NewUnitCountEstimator() *UnitCountEstimator {
	return &UnitCountEstimator{kgPerUnit: DefaultKgPerUnit}
}

// NewUnitCountEstimatorWithWeight creates an estimator at a custom
// average weight per unit. Non-positive weights fall back to the default.
func NewUnitCountEstimatorWithWeight(kgPerUnit decimal.Decimal) *UnitCountEstimator {
	if kgPerUnit.LessThanOrEqual(decimal.Zero) {
		kgPerUnit = DefaultKgPerUnit
	}
	return &UnitCountEstimator{kgPerUnit: kgPerUnit}
}

// Name returns the strategy name
func (e *UnitCountEstimator) Name() string {
	return "unit_count"
}

// EstimateWeight estimates total weight in kilograms for the quantity
func (e *UnitCountEstimator) EstimateWeight(quantity int) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return e.kgPerUnit.Mul(decimal.NewFromInt(int64(quantity)))
}

// Ensure UnitCountEstimator implements WeightEstimator
var _ pooling.WeightEstimator = (*UnitCountEstimator)(nil)
