package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProjectedWeightKg_LinearGain(t *testing.T) {
	ref := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// 30kg calf gaining 0.70kg/day for 90 days = 93kg
	got := ProjectedWeightKg(30, 0.70, ref, ref.AddDate(0, 0, 90))
	assert.InDelta(t, 93.0, got, 1e-9)

	// 250kg weaner gaining 0.90kg/day for 100 days = 340kg
	got = ProjectedWeightKg(250, 0.90, ref, ref.AddDate(0, 0, 100))
	assert.InDelta(t, 340.0, got, 1e-9)
}

func TestProjectedWeightKg_BeforeReferenceDateProjectsNoGrowth(t *testing.T) {
	ref := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	got := ProjectedWeightKg(400, 1.2, ref, ref.AddDate(0, 0, -30))
	assert.InDelta(t, 400.0, got, 1e-9)
}

func TestProjectedWeightKg_NegativeInputsClampToZero(t *testing.T) {
	ref := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	got := ProjectedWeightKg(-50, -1, ref, ref.AddDate(0, 0, 10))
	assert.Zero(t, got)
}

func TestWholeDaysBetween_DiscardsPartialDays(t *testing.T) {
	from := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, WholeDaysBetween(from, from.Add(23*time.Hour)))
	assert.Equal(t, 1, WholeDaysBetween(from, from.Add(25*time.Hour)))
	assert.Equal(t, 0, WholeDaysBetween(from, from.AddDate(0, 0, -5)))
}
