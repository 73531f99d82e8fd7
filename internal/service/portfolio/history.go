package portfolio

import "time"

// historyDates builds the sampling ladder for the history curve, oldest
// first: a point per day across the most recent week, then one per week back
// to the lookback bound. Recent movement gets full resolution without paying
// for daily revaluation across years.
func historyDates(now time.Time, lookbackDays int) []time.Time {
	today := dateOnly(now)
	oldest := today.AddDate(0, 0, -lookbackDays)

	var descending []time.Time
	day := today
	for i := 0; i < 7 && !day.Before(oldest); i++ {
		descending = append(descending, day)
		day = day.AddDate(0, 0, -1)
	}
	for week := today.AddDate(0, 0, -13); !week.Before(oldest); week = week.AddDate(0, 0, -7) {
		descending = append(descending, week)
	}

	dates := make([]time.Time, 0, len(descending))
	for i := len(descending) - 1; i >= 0; i-- {
		dates = append(dates, descending[i])
	}
	return dates
}
