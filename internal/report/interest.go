package report

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
)

// deltaLabelPrefix marks the change column trailing each date column.
const deltaLabelPrefix = "Δ "

// InterestPivot cross-tabulates daily interest by customer and date.
//
// Rows without a customer or with an unreadable date are dropped; absent
// interest cells count as zero. For every date but the earliest a delta holds
// value(date) - value(previous date present). Deltas are raw numbers.
//
// opts.InterestSortByTotal orders rows by descending total across all dates.
// opts.InterestTotalRow attaches a total row of date sums; the total row is
// built after deltas and carries none.
func InterestPivot(rows []model.AccrualRow, opts Options) (model.InterestPivot, error) {
	cells := make(map[string]map[time.Time]float64)
	dateSet := make(map[time.Time]struct{})
	for _, r := range rows {
		if r.Customer == "" || r.Date.IsZero() {
			continue
		}
		if r.Customer == model.TotalLabel {
			return model.InterestPivot{}, fmt.Errorf("%w: %q", apperrors.ErrReservedCustomerLabel, r.Customer)
		}
		day := calendarDay(r.Date)
		byDate, ok := cells[r.Customer]
		if !ok {
			byDate = make(map[time.Time]float64)
			cells[r.Customer] = byDate
		}
		byDate[day] += orZero(r.DailyInterest)
		dateSet[day] = struct{}{}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	customers := sortedKeys(cells)
	pivot := model.InterestPivot{
		Dates: dates,
		Rows:  make([]model.InterestRow, 0, len(customers)),
	}
	for _, c := range customers {
		values := make([]float64, len(dates))
		for i, d := range dates {
			values[i] = cells[c][d]
		}
		pivot.Rows = append(pivot.Rows, model.InterestRow{
			Customer: c,
			Values:   values,
			Deltas:   Deltas(values),
			Total:    floats.Sum(values),
		})
	}

	if opts.InterestSortByTotal {
		slices.SortStableFunc(pivot.Rows, func(a, b model.InterestRow) int {
			return cmp.Compare(b.Total, a.Total)
		})
	}

	if opts.InterestTotalRow {
		dateTotals := make([]float64, len(dates))
		for _, r := range pivot.Rows {
			floats.Add(dateTotals, r.Values)
		}
		pivot.Total = &model.InterestRow{
			Customer: model.TotalLabel,
			Values:   dateTotals,
			Total:    floats.Sum(dateTotals),
		}
	}

	pivot.Columns = DisplayColumns(dates)
	return pivot, nil
}

// Deltas returns the change of each value from the previous one.
// The first element is nil because the earliest date has no predecessor.
func Deltas(values []float64) []*float64 {
	deltas := make([]*float64, len(values))
	for i := 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		deltas[i] = &d
	}
	return deltas
}

// DisplayColumns lays out dates newest first, each followed by its delta
// column. The earliest date has no delta column.
func DisplayColumns(dates []time.Time) []model.InterestColumn {
	if len(dates) == 0 {
		return []model.InterestColumn{}
	}
	columns := make([]model.InterestColumn, 0, 2*len(dates)-1)
	for i := len(dates) - 1; i >= 0; i-- {
		label := dates[i].Format(model.DateLabelLayout)
		columns = append(columns, model.InterestColumn{
			Date:      dates[i],
			Kind:      model.ColumnValue,
			Label:     label,
			DateIndex: i,
		})
		if i > 0 {
			columns = append(columns, model.InterestColumn{
				Date:      dates[i],
				Kind:      model.ColumnDelta,
				Label:     deltaLabelPrefix + label,
				DateIndex: i,
			})
		}
	}
	return columns
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
