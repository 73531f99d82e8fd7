// Package valuation holds the pure calculators that turn a livestock group
// into a dollar figure: growth projection, market price resolution, breeding
// accrual and the holding-cost model, composed by the Evaluator.
package valuation

import "time"

const (
	daysPerYear  = 365
	daysPerMonth = 30.4375
	hoursPerDay  = 24
)

// WholeDaysBetween returns the number of complete days from `from` to `to`,
// never negative. Partial days are discarded so a group valued on its
// reference date has zero elapsed time.
func WholeDaysBetween(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / hoursPerDay)
}

// ProjectedWeightKg grows the initial weight linearly at the daily gain rate
// over the whole days elapsed between the reference date and asOf. Dates
// before the reference date project no growth.
func ProjectedWeightKg(initialKg, dailyGainKg float64, reference, asOf time.Time) float64 {
	if initialKg < 0 {
		initialKg = 0
	}
	if dailyGainKg < 0 {
		dailyGainKg = 0
	}
	return initialKg + dailyGainKg*float64(WholeDaysBetween(reference, asOf))
}
