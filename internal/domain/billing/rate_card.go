package billing

import (
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
)

var (
	// DefaultBaseRate is charged for the first unit of every order
	DefaultBaseRate = decimal.NewFromFloat(2.50)
	// DefaultAdditionalUnitRate is charged for every unit after the first
	DefaultAdditionalUnitRate = decimal.NewFromFloat(1.25)
)

// RateCard prices fulfilled orders by unit count.
// The first unit is charged at BaseRate and every additional unit at AdditionalUnitRate.
type RateCard struct {
	BaseRate           decimal.Decimal `json:"base_rate"`
	AdditionalUnitRate decimal.Decimal `json:"additional_unit_rate"`
}

// DefaultRateCard returns the standard fulfilment rate card
func DefaultRateCard() RateCard {
	return RateCard{
		BaseRate:           DefaultBaseRate,
		AdditionalUnitRate: DefaultAdditionalUnitRate,
	}
}

// NewRateCard creates a rate card with validation
func NewRateCard(baseRate, additionalUnitRate decimal.Decimal) (RateCard, error) {
	if baseRate.IsNegative() {
		return RateCard{}, shared.NewDomainError("INVALID_RATE", "Base rate cannot be negative")
	}
	if additionalUnitRate.IsNegative() {
		return RateCard{}, shared.NewDomainError("INVALID_RATE", "Additional unit rate cannot be negative")
	}
	return RateCard{BaseRate: baseRate, AdditionalUnitRate: additionalUnitRate}, nil
}

// OrderCharge returns the charge for an order with the given number of units.
// Orders without units are not billable and cost nothing.
func (r RateCard) OrderCharge(units int64) decimal.Decimal {
	if units <= 0 {
		return decimal.Zero
	}
	extra := decimal.NewFromInt(units - 1)
	return r.BaseRate.Add(extra.Mul(r.AdditionalUnitRate))
}

// UnitRate returns the average per-unit rate of an order charge, rounded to cents
func UnitRate(charge decimal.Decimal, units int64) decimal.Decimal {
	if units <= 0 {
		return decimal.Zero
	}
	return Round2(charge.Div(decimal.NewFromInt(units)))
}

// Round2 rounds an amount to two decimal places (half away from zero)
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
