package report

import (
	"slices"
	"time"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
)

// DailyTotals sums daily interest across all customers per date, ascending.
// Rows with an unreadable date are skipped.
func DailyTotals(rows []model.AccrualRow) []model.DailyTotal {
	byDate := make(map[time.Time]float64)
	for _, r := range rows {
		if r.Date.IsZero() {
			continue
		}
		byDate[calendarDay(r.Date)] += orZero(r.DailyInterest)
	}

	series := make([]model.DailyTotal, 0, len(byDate))
	for d, total := range byDate {
		series = append(series, model.DailyTotal{Date: d, Total: total})
	}
	slices.SortFunc(series, func(a, b model.DailyTotal) int { return a.Date.Compare(b.Date) })
	return series
}
