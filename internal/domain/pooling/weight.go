package pooling

import "github.com/shopspring/decimal"

// WeightEstimator derives a package weight from order attributes. True
// package weight is not tracked upstream, so the estimate is a named,
// swappable strategy rather than inlined arithmetic.
type WeightEstimator interface {
	// Name identifies the estimation strategy
	Name() string
	// EstimateWeight returns the estimated package weight in kilograms
	// for an order of the given item quantity
	EstimateWeight(quantity int) decimal.Decimal
}
