package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpecies_Table(t *testing.T) {
	assert.Equal(t, 283, SpeciesCattle.GestationCycleDays())
	assert.Equal(t, 150, SpeciesSheep.GestationCycleDays())
	assert.Equal(t, 150, SpeciesGoat.GestationCycleDays())
	assert.Equal(t, 114, SpeciesPig.GestationCycleDays())

	assert.InDelta(t, 0.07, SpeciesCattle.BirthWeightRatio(0), 1e-9)
	assert.InDelta(t, 0.08, SpeciesSheep.BirthWeightRatio(0), 1e-9)
	assert.InDelta(t, 0.08, SpeciesGoat.BirthWeightRatio(0), 1e-9)

	assert.Equal(t, "Calves", SpeciesCattle.JuvenileCategory())
	assert.Equal(t, "Lambs", SpeciesSheep.JuvenileCategory())
	assert.Equal(t, "Kids", SpeciesGoat.JuvenileCategory())
	assert.Equal(t, "Piglets", SpeciesPig.JuvenileCategory())

	assert.InDelta(t, 0.70, SpeciesCattle.JuvenileDailyGainKg(), 1e-9)
	assert.InDelta(t, 0.25, SpeciesSheep.JuvenileDailyGainKg(), 1e-9)
}

func TestSpecies_PigRatioFallsBackWhenUnconfigured(t *testing.T) {
	assert.InDelta(t, DefaultPigBirthWeightRatio, SpeciesPig.BirthWeightRatio(0), 1e-9)
	assert.InDelta(t, 0.008, SpeciesPig.BirthWeightRatio(0.008), 1e-9)
}

func TestLivestockGroup_GestationStartUsesJoiningMidpoint(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	g := LivestockGroup{
		Species:       SpeciesCattle,
		ReferenceDate: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		JoiningStart:  &start,
		JoiningEnd:    &end,
	}

	assert.Equal(t, time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC), g.GestationStart())
	assert.Equal(t, g.GestationStart().AddDate(0, 0, 283), g.CalvingDate())
}

func TestLivestockGroup_GestationStartFallsBackToReferenceDate(t *testing.T) {
	ref := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	g := LivestockGroup{Species: SpeciesSheep, ReferenceDate: ref}

	assert.Equal(t, ref, g.GestationStart())
	assert.Equal(t, ref.AddDate(0, 0, 150), g.CalvingDate())
}

func TestLivestockGroup_SanitizeClampsNegatives(t *testing.T) {
	g := LivestockGroup{
		HeadCount:       -4,
		InitialWeightKg: -10,
		DailyGainKg:     -0.5,
		CalvingRate:     -1,
	}
	g.Sanitize()

	assert.Equal(t, 0, g.HeadCount)
	assert.Zero(t, g.InitialWeightKg)
	assert.Zero(t, g.DailyGainKg)
	assert.Zero(t, g.CalvingRate)
}

func TestLivestockGroup_ValidateRejectsInvertedJoiningWindow(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -7)
	g := LivestockGroup{
		Species:         SpeciesCattle,
		Category:        "Cows",
		HeadCount:       10,
		InitialWeightKg: 500,
		ReferenceDate:   start,
		JoiningStart:    &start,
		JoiningEnd:      &end,
	}

	assert.Error(t, g.Validate())
}
