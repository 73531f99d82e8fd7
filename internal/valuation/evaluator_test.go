package valuation

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
)

func testPrefs() models.Preferences {
	return models.Preferences{
		Costs: models.CostProfile{
			AgistmentMonthly:    10,
			FeedMonthly:         15,
			VetMonthly:          5,
			FreightPerKm:        3.5,
			AnnualMortalityRate: 0.02,
		},
		Stat:              models.PriceStatCurrent,
		FreightDistanceKm: 100,
	}
}

func TestEvaluate_PregnantHerdDecomposition(t *testing.T) {
	joined := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	asOf := joined.AddDate(0, 0, 141)
	source := staticSource{quotes: []models.MarketPriceQuote{
		quote("Cows", "", "Wagga", "3.20", 1),
		quote("Calves", "", "Wagga", "4.50", 1),
	}}
	e := NewEvaluator(source, nil)

	g := models.LivestockGroup{
		ID:              "herd-1",
		Species:         models.SpeciesCattle,
		Category:        "Cows",
		HeadCount:       50,
		InitialWeightKg: 550,
		DailyGainKg:     0,
		ReferenceDate:   joined,
		IsBreeder:       true,
		IsPregnant:      true,
		CalvingRate:     0.85,
		SaleyardVenue:   "Wagga",
	}

	res, err := e.Evaluate(context.Background(), g, testPrefs(), asOf)
	require.NoError(t, err)

	// 50 head x 550kg x $3.20 = $88,000
	assert.True(t, res.PhysicalValue.Equal(decimal.NewFromInt(88000)))
	// 88000 x 0.02 x 141/365
	assert.InDelta(t, 679.89, res.MortalityDeduction.InexactFloat64(), 0.01)
	// 42.5 calves x 141/283 x 38.5kg x $4.50
	assert.InDelta(t, 3668.55, res.BreedingAccrual.InexactFloat64(), 0.01)
	// 30/month/head x 141/30.4375 x 50 head + 3.5 x 100km freight
	assert.InDelta(t, 30*(141.0/30.4375)*50+350, res.CostToCarry.InexactFloat64(), 0.01)

	identity := res.PhysicalValue.
		Sub(res.MortalityDeduction).
		Add(res.BreedingAccrual).
		Sub(res.CostToCarry)
	assert.True(t, res.NetValue.Equal(identity), "net must equal physical - mortality + accrual - costs")

	assert.Equal(t, "Wagga", res.PriceProvenance.Venue)
	assert.InDelta(t, 550.0, res.ProjectedWeightKg, 1e-9)
}

func TestEvaluate_SoldGroupIsZeroValued(t *testing.T) {
	e := NewEvaluator(staticSource{}, nil)
	soldAt := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	g := models.LivestockGroup{
		ID:              "sold-1",
		Species:         models.SpeciesCattle,
		Category:        "Steers",
		HeadCount:       20,
		InitialWeightKg: 400,
		ReferenceDate:   soldAt.AddDate(0, -6, 0),
		IsSold:          true,
		SoldAt:          &soldAt,
	}

	res, err := e.Evaluate(context.Background(), g, testPrefs(), soldAt.AddDate(0, 1, 0))
	require.NoError(t, err)

	assert.True(t, res.Sold)
	assert.True(t, res.NetValue.IsZero())
	assert.True(t, res.PhysicalValue.IsZero())
	assert.True(t, res.CostToCarry.IsZero())
}

func TestEvaluate_NoMarketDataStillBillsCosts(t *testing.T) {
	joined := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := NewEvaluator(staticSource{}, nil)

	g := models.LivestockGroup{
		ID:              "exotic-1",
		Species:         models.SpeciesGoat,
		Category:        "Bucks",
		HeadCount:       10,
		InitialWeightKg: 60,
		ReferenceDate:   joined,
	}

	res, err := e.Evaluate(context.Background(), g, testPrefs(), joined.AddDate(0, 0, 30))
	require.NoError(t, err)

	assert.True(t, res.PriceProvenance.NoData)
	assert.True(t, res.PhysicalValue.IsZero())
	assert.True(t, res.MortalityDeduction.IsZero())
	assert.True(t, res.CostToCarry.GreaterThan(decimal.Zero), "holding costs accrue even unpriced")
	assert.True(t, res.NetValue.Equal(res.CostToCarry.Neg()))
}

func TestEvaluate_NonBreederSkipsJuvenileLookup(t *testing.T) {
	joined := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	source := staticSource{quotes: []models.MarketPriceQuote{
		quote("Steers", "", "", "3.00", 1),
		quote("Calves", "", "", "4.50", 1),
	}}
	e := NewEvaluator(source, nil)

	g := models.LivestockGroup{
		ID:              "steers-1",
		Species:         models.SpeciesCattle,
		Category:        "Steers",
		HeadCount:       20,
		InitialWeightKg: 300,
		DailyGainKg:     0.9,
		ReferenceDate:   joined,
	}

	res, err := e.Evaluate(context.Background(), g, testPrefs(), joined.AddDate(0, 0, 100))
	require.NoError(t, err)

	assert.True(t, res.BreedingAccrual.IsZero())
	// 300 + 0.9 x 100 = 390kg
	assert.InDelta(t, 390.0, res.ProjectedWeightKg, 1e-9)
	// 20 x 390 x 3.00 = 23,400
	assert.True(t, res.PhysicalValue.Equal(decimal.NewFromInt(23400)))
}

func TestEvaluate_CancelledContext(t *testing.T) {
	e := NewEvaluator(staticSource{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Evaluate(ctx, models.LivestockGroup{}, testPrefs(), time.Now())

	assert.Error(t, err)
}

func TestInitialValue_PricesInitialWeight(t *testing.T) {
	joined := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	source := staticSource{quotes: []models.MarketPriceQuote{
		quote("Steers", "", "", "3.00", 1),
	}}
	e := NewEvaluator(source, nil)

	g := models.LivestockGroup{
		ID:              "steers-1",
		Species:         models.SpeciesCattle,
		Category:        "Steers",
		HeadCount:       20,
		InitialWeightKg: 300,
		DailyGainKg:     0.9,
		ReferenceDate:   joined,
	}

	got := e.InitialValue(context.Background(), g, testPrefs(), joined.AddDate(0, 0, 100))

	// Initial weight, not projected: 20 x 300 x 3.00 = 18,000
	assert.True(t, got.Equal(decimal.NewFromInt(18000)))
}
