package valuation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
)

// ExpectedProgeny is the fractional head of offspring a breeder group is
// carrying: headCount x calvingRate, kept fractional so accrual moves
// smoothly as gestation advances.
func ExpectedProgeny(headCount int, calvingRate float64) decimal.Decimal {
	if headCount <= 0 || calvingRate <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(headCount)).Mul(decimal.NewFromFloat(calvingRate))
}

// BirthWeightKg derives newborn weight from the mother's liveweight and the
// species ratio.
func BirthWeightKg(species models.Species, motherWeightKg, configuredPigRatio float64) decimal.Decimal {
	if motherWeightKg <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(motherWeightKg).
		Mul(decimal.NewFromFloat(species.BirthWeightRatio(configuredPigRatio)))
}

// GestationProgress returns elapsed/cycle for the group's pregnancy at asOf,
// clamped to [0, 1]. Gestations past their full term keep accruing at the
// completed rate until the delivery transition runs.
func GestationProgress(g models.LivestockGroup, asOf time.Time) decimal.Decimal {
	cycle := g.Species.GestationCycleDays()
	elapsed := WholeDaysBetween(g.GestationStart(), asOf)
	if elapsed <= 0 {
		return decimal.Zero
	}
	if elapsed >= cycle {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(elapsed)).Div(decimal.NewFromInt(int64(cycle)))
}

// BreedingAccrual values the unborn progeny a pregnant breeder group carries:
//
//	expectedProgeny x gestationProgress x birthWeight x juvenile unit price
//
// Non-pregnant, delivered and sold groups accrue nothing.
func BreedingAccrual(g models.LivestockGroup, motherWeightKg float64, juvenileUnitPrice decimal.Decimal, asOf time.Time, pigRatio float64) decimal.Decimal {
	if g.IsSold || !g.IsBreeder || !g.IsPregnant || g.IsDelivered() {
		return decimal.Zero
	}
	progeny := ExpectedProgeny(g.HeadCount, g.CalvingRate)
	if progeny.IsZero() {
		return decimal.Zero
	}
	return progeny.
		Mul(GestationProgress(g, asOf)).
		Mul(BirthWeightKg(g.Species, motherWeightKg, pigRatio)).
		Mul(juvenileUnitPrice)
}
