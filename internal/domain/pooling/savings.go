package pooling

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftbridge/backend/internal/domain/shared"
)

// MinPoolSize is the smallest cluster for which consolidation applies.
// A single order degenerates to individual shipping, reported as a
// first-class outcome rather than an error.
const MinPoolSize = 2

var hundred = decimal.NewFromInt(100)

// moneyPrecision is the currency precision applied at output
const moneyPrecision = int32(2)

// OrderWeight is the minimal order shape the savings calculator needs.
type OrderWeight struct {
	OrderID   uuid.UUID
	ArtisanID uuid.UUID
	WeightKg  decimal.Decimal
}

// CostSplit apportions the consolidated cost back to one member order,
// proportional to its weight share.
type CostSplit struct {
	OrderID        uuid.UUID       `json:"order_id"`
	ArtisanID      uuid.UUID       `json:"artisan_id"`
	WeightKg       decimal.Decimal `json:"weight_kg"`
	IndividualCost decimal.Decimal `json:"individual_cost"`
	PooledCost     decimal.Decimal `json:"pooled_cost"`
	Savings        decimal.Decimal `json:"savings"`
	SavingsPercent decimal.Decimal `json:"savings_percent"`
}

// SavingsReport compares shipping a cluster individually against
// shipping it consolidated, with the per-order cost apportionment.
type SavingsReport struct {
	PoolingAvailable   bool            `json:"pooling_available"`
	DestinationCountry string          `json:"destination_country"`
	UsedDefaultRate    bool            `json:"used_default_rate"`
	OrderCount         int             `json:"order_count"`
	TotalWeightKg      decimal.Decimal `json:"total_weight_kg"`
	IndividualTotal    decimal.Decimal `json:"individual_total"`
	PooledTotal        decimal.Decimal `json:"pooled_total"`
	TotalSavings       decimal.Decimal `json:"total_savings"`
	SavingsPercent     decimal.Decimal `json:"savings_percent"`
	Splits             []CostSplit     `json:"splits"`
}

// SavingsCalculator prices clusters against an injected rate card. It is
// pure and deterministic: the same order list always yields the same
// report.
type SavingsCalculator struct {
	rates *RateCard
}

// NewSavingsCalculator creates a calculator over the given rate card
func NewSavingsCalculator(rates *RateCard) *SavingsCalculator {
	return &SavingsCalculator{rates: rates}
}

// Calculate computes individual vs consolidated shipping cost for a
// cluster and apportions the consolidated total across members by weight
// share. Internal math stays full precision; monetary outputs are
// rounded to 2 decimal places once, with the last split absorbing the
// rounding residual so the splits sum exactly to the pooled total.
func (c *SavingsCalculator) Calculate(orders []OrderWeight, destinationCountry string) (*SavingsReport, error) {
	for _, order := range orders {
		if !order.WeightKg.IsPositive() {
			return nil, shared.ErrInvalidInput.WithDetails(
				fmt.Sprintf("order %s has non-positive weight %s", order.OrderID, order.WeightKg))
		}
	}

	quote := c.rates.RateFor(destinationCountry)
	report := &SavingsReport{
		DestinationCountry: destinationCountry,
		UsedDefaultRate:    quote.UsedDefault,
		OrderCount:         len(orders),
		TotalWeightKg:      decimal.Zero,
		IndividualTotal:    decimal.Zero,
		PooledTotal:        decimal.Zero,
		TotalSavings:       decimal.Zero,
		SavingsPercent:     decimal.Zero,
		Splits:             make([]CostSplit, 0, len(orders)),
	}

	if len(orders) < MinPoolSize {
		// Degenerate pool: individual shipping is the path forward.
		for _, order := range orders {
			individual := order.WeightKg.Mul(quote.IndividualPerKg).Round(moneyPrecision)
			report.TotalWeightKg = report.TotalWeightKg.Add(order.WeightKg)
			report.IndividualTotal = report.IndividualTotal.Add(individual)
			report.Splits = append(report.Splits, CostSplit{
				OrderID:        order.OrderID,
				ArtisanID:      order.ArtisanID,
				WeightKg:       order.WeightKg,
				IndividualCost: individual,
				PooledCost:     individual,
				Savings:        decimal.Zero,
				SavingsPercent: decimal.Zero,
			})
		}
		report.PooledTotal = report.IndividualTotal
		return report, nil
	}

	totalWeight := decimal.Zero
	for _, order := range orders {
		totalWeight = totalWeight.Add(order.WeightKg)
	}

	individualTotal := totalWeight.Mul(quote.IndividualPerKg)
	pooledTotal := totalWeight.Mul(quote.ConsolidatedPerKg)
	pooledTotalRounded := pooledTotal.Round(moneyPrecision)

	allocated := decimal.Zero
	for i, order := range orders {
		proportion := decimal.Zero
		if totalWeight.IsPositive() {
			proportion = order.WeightKg.Div(totalWeight)
		}
		individual := order.WeightKg.Mul(quote.IndividualPerKg)
		pooled := pooledTotal.Mul(proportion).Round(moneyPrecision)
		if i == len(orders)-1 {
			// last member absorbs the rounding residual
			pooled = pooledTotalRounded.Sub(allocated)
		}
		allocated = allocated.Add(pooled)

		individualRounded := individual.Round(moneyPrecision)
		savings := individualRounded.Sub(pooled)
		savingsPercent := decimal.Zero
		if individualRounded.IsPositive() {
			savingsPercent = savings.Mul(hundred).Div(individualRounded).Round(1)
		}
		report.Splits = append(report.Splits, CostSplit{
			OrderID:        order.OrderID,
			ArtisanID:      order.ArtisanID,
			WeightKg:       order.WeightKg,
			IndividualCost: individualRounded,
			PooledCost:     pooled,
			Savings:        savings,
			SavingsPercent: savingsPercent,
		})
	}

	report.PoolingAvailable = true
	report.TotalWeightKg = totalWeight
	report.IndividualTotal = individualTotal.Round(moneyPrecision)
	report.PooledTotal = pooledTotalRounded
	report.TotalSavings = report.IndividualTotal.Sub(report.PooledTotal)
	if report.IndividualTotal.IsPositive() {
		report.SavingsPercent = report.TotalSavings.Mul(hundred).Div(report.IndividualTotal).Round(1)
	}
	return report, nil
}
