package valuation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
)

func TestCarryCosts_MortalityProratesByDaysHeld(t *testing.T) {
	profile := models.CostProfile{AnnualMortalityRate: 0.04}
	physical := decimal.NewFromInt(10000)

	full := CarryCosts(profile, 20, 365, physical, 0)
	// A full year loses the whole annual rate: 10000 x 0.04 = 400
	assert.True(t, full.MortalityDeduction.Equal(decimal.NewFromInt(400)))

	half := CarryCosts(profile, 20, 73, physical, 0)
	// 73/365 of a year: 10000 x 0.04 x 0.2 = 80
	assert.True(t, half.MortalityDeduction.Equal(decimal.NewFromInt(80)))
}

func TestCarryCosts_MortalityNeverExceedsPhysicalValue(t *testing.T) {
	profile := models.CostProfile{AnnualMortalityRate: 1}
	physical := decimal.NewFromInt(5000)

	// Ten years at a total-loss rate would be 10x the herd's worth; the
	// deduction stops at the herd itself.
	got := CarryCosts(profile, 20, 3650, physical, 0)

	assert.True(t, got.MortalityDeduction.Equal(physical))
}

func TestCarryCosts_MonthlyHoldingCostsPlusFreight(t *testing.T) {
	profile := models.CostProfile{
		AgistmentMonthly: 10,
		FeedMonthly:      15,
		VetMonthly:       5,
		FreightPerKm:     3.5,
	}

	got := CarryCosts(profile, 50, 141, decimal.NewFromInt(88000), 100)

	// 30/month/head over 141/30.4375 months for 50 head, plus 3.5 x 100km
	months := 141.0 / 30.4375
	want := 30*months*50 + 350
	assert.InDelta(t, want, got.CostToCarry.InexactFloat64(), 0.01)
}

func TestCarryCosts_ZeroDaysChargesFreightOnly(t *testing.T) {
	profile := models.CostProfile{
		AgistmentMonthly:    10,
		FeedMonthly:         15,
		VetMonthly:          5,
		FreightPerKm:        2,
		AnnualMortalityRate: 0.04,
	}

	got := CarryCosts(profile, 50, 0, decimal.NewFromInt(88000), 250)

	assert.True(t, got.MortalityDeduction.IsZero())
	assert.True(t, got.CostToCarry.Equal(decimal.NewFromInt(500)))
}

func TestCarryCosts_NegativeElapsedClampsToZero(t *testing.T) {
	profile := models.CostProfile{
		AgistmentMonthly:    10,
		AnnualMortalityRate: 0.04,
	}

	got := CarryCosts(profile, 50, -10, decimal.NewFromInt(1000), 0)

	assert.True(t, got.MortalityDeduction.IsZero())
	assert.True(t, got.CostToCarry.IsZero())
}
