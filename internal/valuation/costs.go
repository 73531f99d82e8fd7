package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
)

// CostBreakdown is the deduction side of a valuation.
type CostBreakdown struct {
	// MortalityDeduction prorates the annual expected loss across the days
	// held, clamped so it can never exceed the physical value itself.
	MortalityDeduction decimal.Decimal

	// CostToCarry is the accumulated holding cost: monthly agistment, feed
	// and vet charges per head, plus the one-off freight leg.
	CostToCarry decimal.Decimal
}

// CarryCosts computes both deductions for a group held elapsedDays with the
// given physical value.
func CarryCosts(profile models.CostProfile, headCount, elapsedDays int, physicalValue decimal.Decimal, freightDistanceKm float64) CostBreakdown {
	if headCount < 0 {
		headCount = 0
	}
	if elapsedDays < 0 {
		elapsedDays = 0
	}

	mortality := physicalValue.
		Mul(decimal.NewFromFloat(profile.AnnualMortalityRate)).
		Mul(decimal.NewFromInt(int64(elapsedDays))).
		Div(decimal.NewFromInt(daysPerYear))
	if mortality.GreaterThan(physicalValue) {
		mortality = physicalValue
	}
	if mortality.IsNegative() {
		mortality = decimal.Zero
	}

	months := decimal.NewFromInt(int64(elapsedDays)).Div(decimal.NewFromFloat(daysPerMonth))
	perHeadMonthly := decimal.NewFromFloat(profile.AgistmentMonthly).
		Add(decimal.NewFromFloat(profile.FeedMonthly)).
		Add(decimal.NewFromFloat(profile.VetMonthly))
	carry := perHeadMonthly.
		Mul(months).
		Mul(decimal.NewFromInt(int64(headCount))).
		Add(decimal.NewFromFloat(profile.FreightPerKm).Mul(decimal.NewFromFloat(freightDistanceKm)))
	if carry.IsNegative() {
		carry = decimal.Zero
	}

	return CostBreakdown{MortalityDeduction: mortality, CostToCarry: carry}
}
