package valuation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
)

func pregnantHerd(head int, rate float64, joined time.Time) models.LivestockGroup {
	return models.LivestockGroup{
		ID:              "herd-1",
		Species:         models.SpeciesCattle,
		Category:        "Cows",
		HeadCount:       head,
		InitialWeightKg: 550,
		ReferenceDate:   joined,
		IsBreeder:       true,
		IsPregnant:      true,
		CalvingRate:     rate,
	}
}

func TestBreedingAccrual_MidGestationHerd(t *testing.T) {
	joined := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g := pregnantHerd(50, 0.85, joined)
	asOf := joined.AddDate(0, 0, 141)

	got := BreedingAccrual(g, 550, decimal.RequireFromString("4.50"), asOf, 0)

	// 50 x 0.85 = 42.5 expected calves, 141/283 through gestation,
	// each worth 550 x 0.07 = 38.5kg at $4.50/kg.
	// 42.5 x (141/283) x 38.5 x 4.50 = 3668.55
	assert.InDelta(t, 3668.55, got.InexactFloat64(), 0.01)
}

func TestBreedingAccrual_SaturatesAtFullTerm(t *testing.T) {
	joined := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g := pregnantHerd(50, 0.85, joined)
	price := decimal.RequireFromString("4.50")

	atTerm := BreedingAccrual(g, 550, price, joined.AddDate(0, 0, 283), 0)
	overdue := BreedingAccrual(g, 550, price, joined.AddDate(0, 0, 283+30), 0)

	// 42.5 x 1.0 x 38.5 x 4.50 = 7363.125, held flat past term
	assert.True(t, atTerm.Equal(decimal.RequireFromString("7363.125")))
	assert.True(t, overdue.Equal(atTerm))
}

func TestBreedingAccrual_FullTermValuePerCalf(t *testing.T) {
	joined := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g := pregnantHerd(1, 1, joined)

	got := BreedingAccrual(g, 550, decimal.RequireFromString("4.50"), joined.AddDate(0, 0, 283), 0)

	// One guaranteed calf at term: 38.5kg x $4.50 = $173.25
	assert.True(t, got.Equal(decimal.RequireFromString("173.25")))
}

func TestBreedingAccrual_ZeroBeforeGestationStarts(t *testing.T) {
	joined := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	g := pregnantHerd(50, 0.85, joined)

	got := BreedingAccrual(g, 550, decimal.RequireFromString("4.50"), joined, 0)

	assert.True(t, got.IsZero())
}

func TestBreedingAccrual_NothingForNonBreeders(t *testing.T) {
	joined := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	asOf := joined.AddDate(0, 0, 100)
	price := decimal.RequireFromString("4.50")

	notPregnant := pregnantHerd(50, 0.85, joined)
	notPregnant.IsPregnant = false
	assert.True(t, BreedingAccrual(notPregnant, 550, price, asOf, 0).IsZero())

	delivered := pregnantHerd(50, 0.85, joined)
	processed := joined.AddDate(0, 0, 283)
	delivered.CalvingProcessedDate = &processed
	assert.True(t, BreedingAccrual(delivered, 550, price, asOf, 0).IsZero())

	sold := pregnantHerd(50, 0.85, joined)
	sold.IsSold = true
	assert.True(t, BreedingAccrual(sold, 550, price, asOf, 0).IsZero())

	zeroRate := pregnantHerd(50, 0, joined)
	assert.True(t, BreedingAccrual(zeroRate, 550, price, asOf, 0).IsZero())
}

func TestBreedingAccrual_UsesJoiningWindowMidpoint(t *testing.T) {
	joined := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g := pregnantHerd(50, 0.85, joined)
	winStart := joined.AddDate(0, 0, 20)
	winEnd := joined.AddDate(0, 0, 40)
	g.JoiningStart = &winStart
	g.JoiningEnd = &winEnd

	// Midpoint is day 30, so 130 days after joining only 100 days of the
	// cycle have elapsed.
	asOf := joined.AddDate(0, 0, 130)
	progress := GestationProgress(g, asOf)

	want := decimal.NewFromInt(100).Div(decimal.NewFromInt(283))
	assert.True(t, progress.Equal(want))
}

func TestExpectedProgeny_StaysFractional(t *testing.T) {
	got := ExpectedProgeny(50, 0.85)
	assert.True(t, got.Equal(decimal.RequireFromString("42.5")))

	assert.True(t, ExpectedProgeny(0, 0.85).IsZero())
	assert.True(t, ExpectedProgeny(50, 0).IsZero())
}

func TestBirthWeightKg_SpeciesRatios(t *testing.T) {
	assert.True(t, BirthWeightKg(models.SpeciesCattle, 550, 0).Equal(decimal.RequireFromString("38.5")))
	assert.True(t, BirthWeightKg(models.SpeciesSheep, 70, 0).Equal(decimal.RequireFromString("5.6")))
	// Pigs use the configured ratio
	assert.True(t, BirthWeightKg(models.SpeciesPig, 200, 0.008).Equal(decimal.RequireFromString("1.6")))
}
