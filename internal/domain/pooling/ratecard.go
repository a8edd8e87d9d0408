package pooling

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/craftbridge/backend/internal/domain/shared"
)

// DomesticCountry is the country code of the marketplace's home market.
// Orders bound for it use the domestic rate bucket.
const DomesticCountry = "IN"

// RateBucket holds the per-kilogram shipping rates for one destination
// bucket, for both service tiers.
type RateBucket struct {
	IndividualPerKg   decimal.Decimal `json:"individual_per_kg" mapstructure:"individual_per_kg"`
	ConsolidatedPerKg decimal.Decimal `json:"consolidated_per_kg" mapstructure:"consolidated_per_kg"`
}

// Validate checks the pricing invariant for a single bucket:
// both rates positive and consolidated strictly cheaper than individual.
func (b RateBucket) Validate() error {
	if !b.IndividualPerKg.IsPositive() || !b.ConsolidatedPerKg.IsPositive() {
		return shared.ErrConfiguration.WithDetails("shipping rates must be positive")
	}
	if !b.ConsolidatedPerKg.LessThan(b.IndividualPerKg) {
		return shared.ErrConfiguration.WithDetails(
			fmt.Sprintf("consolidated rate %s must be less than individual rate %s",
				b.ConsolidatedPerKg, b.IndividualPerKg))
	}
	return nil
}

// RateQuote is the result of a rate lookup. UsedDefault distinguishes a
// confident match from the generic fallback bucket.
type RateQuote struct {
	IndividualPerKg   decimal.Decimal
	ConsolidatedPerKg decimal.Decimal
	UsedDefault       bool
}

// RateCard maps destination buckets to per-kilogram shipping rates.
// It is immutable after construction and injected into every component
// that prices shipments, so tests can substitute their own tables.
type RateCard struct {
	domestic      RateBucket
	international map[string]RateBucket
	fallback      RateBucket
}

// NewRateCard builds a rate card from explicit buckets. Country keys are
// normalized to upper case. Returns a configuration error if any bucket
// violates the pricing invariant.
func NewRateCard(domestic RateBucket, international map[string]RateBucket, fallback RateBucket) (*RateCard, error) {
	if err := domestic.Validate(); err != nil {
		return nil, err
	}
	if err := fallback.Validate(); err != nil {
		return nil, err
	}
	normalized := make(map[string]RateBucket, len(international))
	for country, bucket := range international {
		if err := bucket.Validate(); err != nil {
			return nil, shared.ErrConfiguration.WithDetails(
				fmt.Sprintf("rate bucket for %q: %s", country, err.Error()))
		}
		normalized[strings.ToUpper(strings.TrimSpace(country))] = bucket
	}
	return &RateCard{
		domestic:      domestic,
		international: normalized,
		fallback:      fallback,
	}, nil
}

// DefaultRateCard returns the standard marketplace rate table (INR per kg).
func DefaultRateCard() *RateCard {
	card, err := NewRateCard(
		RateBucket{IndividualPerKg: decimal.NewFromInt(50), ConsolidatedPerKg: decimal.NewFromInt(30)},
		map[string]RateBucket{
			"US": {IndividualPerKg: decimal.NewFromInt(800), ConsolidatedPerKg: decimal.NewFromInt(480)},
			"UK": {IndividualPerKg: decimal.NewFromInt(750), ConsolidatedPerKg: decimal.NewFromInt(450)},
			"DE": {IndividualPerKg: decimal.NewFromInt(800), ConsolidatedPerKg: decimal.NewFromInt(480)},
			"AU": {IndividualPerKg: decimal.NewFromInt(900), ConsolidatedPerKg: decimal.NewFromInt(540)},
		},
		RateBucket{IndividualPerKg: decimal.NewFromInt(850), ConsolidatedPerKg: decimal.NewFromInt(510)},
	)
	if err != nil {
		// the built-in table satisfies the invariant by construction
		panic(err)
	}
	return card
}

// RateFor looks up the rates for a destination country. The lookup is
// total: unknown destinations fall back to the generic international
// bucket with UsedDefault set.
func (c *RateCard) RateFor(destinationCountry string) RateQuote {
	country := strings.ToUpper(strings.TrimSpace(destinationCountry))
	if country == DomesticCountry || strings.EqualFold(destinationCountry, "domestic") || strings.EqualFold(destinationCountry, "India") {
		return RateQuote{
			IndividualPerKg:   c.domestic.IndividualPerKg,
			ConsolidatedPerKg: c.domestic.ConsolidatedPerKg,
		}
	}
	if bucket, ok := c.international[country]; ok {
		return RateQuote{
			IndividualPerKg:   bucket.IndividualPerKg,
			ConsolidatedPerKg: bucket.ConsolidatedPerKg,
		}
	}
	return RateQuote{
		IndividualPerKg:   c.fallback.IndividualPerKg,
		ConsolidatedPerKg: c.fallback.ConsolidatedPerKg,
		UsedDefault:       true,
	}
}

// Countries returns the explicitly mapped international country codes.
func (c *RateCard) Countries() []string {
	countries := make([]string, 0, len(c.international))
	for country := range c.international {
		countries = append(countries, country)
	}
	return countries
}
