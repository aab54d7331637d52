package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/report"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/testutil"
)

func deltaValues(t *testing.T, deltas []*float64) []any {
	t.Helper()
	out := make([]any, len(deltas))
	for i, d := range deltas {
		if d == nil {
			out[i] = nil
			continue
		}
		out[i] = *d
	}
	return out
}

// TestInterestPivot tests the customer × date interest matrix and its deltas.
//
// WHY: The interest view is read as "how much did interest move since the
// previous day". A delta against the wrong day, a delta on the earliest date,
// or a delta computed on the total row gives users a false trend.
func TestInterestPivot(t *testing.T) {
	jan1 := testutil.Day(2025, 1, 1)
	jan2 := testutil.Day(2025, 1, 2)
	jan3 := testutil.Day(2025, 1, 3)

	t.Run("deltas against the previous date", func(t *testing.T) {
		rows := []model.AccrualRow{
			testutil.NewAccrual("A", jan3, 120),
			testutil.NewAccrual("A", jan1, 100),
			testutil.NewAccrual("A", jan2, 150),
		}

		pivot, err := report.InterestPivot(rows, report.DefaultOptions())

		require.NoError(t, err)
		assert.Equal(t, []time.Time{jan1, jan2, jan3}, pivot.Dates)
		require.Len(t, pivot.Rows, 1)
		assert.Equal(t, []float64{100, 150, 120}, pivot.Rows[0].Values)
		assert.Equal(t, []any{nil, 50.0, -30.0}, deltaValues(t, pivot.Rows[0].Deltas))
	})

	t.Run("missing customer date pairs are zero", func(t *testing.T) {
		rows := []model.AccrualRow{
			testutil.NewAccrual("A", jan1, 10),
			testutil.NewAccrual("B", jan2, 20),
		}

		pivot, err := report.InterestPivot(rows, report.DefaultOptions())

		require.NoError(t, err)
		require.Len(t, pivot.Rows, 2)
		assert.Equal(t, []float64{10, 0}, pivot.Rows[0].Values)
		assert.Equal(t, []float64{0, 20}, pivot.Rows[1].Values)
		assert.Equal(t, []any{nil, -10.0}, deltaValues(t, pivot.Rows[0].Deltas))
		assert.Equal(t, []any{nil, 20.0}, deltaValues(t, pivot.Rows[1].Deltas))
	})

	t.Run("sums repeated customer date pairs and ignores time of day", func(t *testing.T) {
		rows := []model.AccrualRow{
			testutil.NewAccrual("A", jan1, 10),
			testutil.NewAccrual("A", jan1.Add(9*time.Hour), 5),
		}

		pivot, err := report.InterestPivot(rows, report.DefaultOptions())

		require.NoError(t, err)
		assert.Len(t, pivot.Dates, 1)
		assert.Equal(t, []float64{15}, pivot.Rows[0].Values)
	})

	t.Run("drops rows without customer or date", func(t *testing.T) {
		rows := []model.AccrualRow{
			testutil.NewAccrual("", jan1, 10),
			testutil.NewAccrual("A", time.Time{}, 10),
			testutil.NewAccrual("A", jan2, 7),
		}

		pivot, err := report.InterestPivot(rows, report.DefaultOptions())

		require.NoError(t, err)
		assert.Equal(t, []time.Time{jan2}, pivot.Dates)
		require.Len(t, pivot.Rows, 1)
		assert.Equal(t, "A", pivot.Rows[0].Customer)
	})

	t.Run("total row sums dates and carries no deltas", func(t *testing.T) {
		_, accruals := testutil.SampleDashboardRows()
		opts := report.DefaultOptions()
		opts.InterestTotalRow = true

		pivot, err := report.InterestPivot(accruals, opts)

		require.NoError(t, err)
		require.NotNil(t, pivot.Total)
		assert.Equal(t, model.TotalLabel, pivot.Total.Customer)
		assert.Equal(t, []float64{100, 190, 180}, pivot.Total.Values)
		assert.Nil(t, pivot.Total.Deltas)
		for _, r := range pivot.Rows {
			assert.NotEqual(t, model.TotalLabel, r.Customer)
		}
	})

	t.Run("no total row when disabled", func(t *testing.T) {
		_, accruals := testutil.SampleDashboardRows()
		opts := report.DefaultOptions()
		opts.InterestTotalRow = false

		pivot, err := report.InterestPivot(accruals, opts)

		require.NoError(t, err)
		assert.Nil(t, pivot.Total)
	})

	t.Run("sort by total orders rows descending", func(t *testing.T) {
		rows := []model.AccrualRow{
			testutil.NewAccrual("A", jan1, 1),
			testutil.NewAccrual("B", jan1, 30),
			testutil.NewAccrual("C", jan1, 10),
			testutil.NewAccrual("C", jan2, 10),
		}
		opts := report.DefaultOptions()
		opts.InterestSortByTotal = true

		pivot, err := report.InterestPivot(rows, opts)

		require.NoError(t, err)
		require.Len(t, pivot.Rows, 3)
		assert.Equal(t, "B", pivot.Rows[0].Customer)
		assert.Equal(t, "C", pivot.Rows[1].Customer)
		assert.Equal(t, "A", pivot.Rows[2].Customer)
		assert.Equal(t, 20.0, pivot.Rows[1].Total)
	})

	t.Run("display columns are newest first with trailing deltas", func(t *testing.T) {
		rows := []model.AccrualRow{
			testutil.NewAccrual("A", jan1, 100),
			testutil.NewAccrual("A", jan2, 150),
			testutil.NewAccrual("A", jan3, 120),
		}

		pivot, err := report.InterestPivot(rows, report.DefaultOptions())

		require.NoError(t, err)
		labels := make([]string, len(pivot.Columns))
		for i, c := range pivot.Columns {
			labels[i] = c.Label
		}
		assert.Equal(t, []string{"03/01/2025", "Δ 03/01/2025", "02/01/2025", "Δ 02/01/2025", "01/01/2025"}, labels)

		cells := make([]any, len(pivot.Columns))
		for i, c := range pivot.Columns {
			if v := pivot.Cell(pivot.Rows[0], c); v != nil {
				cells[i] = *v
			}
		}
		assert.Equal(t, []any{120.0, -30.0, 150.0, 50.0, 100.0}, cells)
	})

	t.Run("total row delta cells are absent", func(t *testing.T) {
		_, accruals := testutil.SampleDashboardRows()

		pivot, err := report.InterestPivot(accruals, report.DefaultOptions())

		require.NoError(t, err)
		require.NotNil(t, pivot.Total)
		for _, c := range pivot.Columns {
			cell := pivot.Cell(*pivot.Total, c)
			if c.Kind == model.ColumnDelta {
				assert.Nil(t, cell)
			} else {
				assert.NotNil(t, cell)
			}
		}
	})

	t.Run("empty input yields empty pivot", func(t *testing.T) {
		pivot, err := report.InterestPivot(nil, report.DefaultOptions())

		require.NoError(t, err)
		assert.Empty(t, pivot.Dates)
		assert.Empty(t, pivot.Rows)
		assert.Empty(t, pivot.Columns)
	})

	t.Run("customer named like total row is rejected", func(t *testing.T) {
		rows := []model.AccrualRow{testutil.NewAccrual(model.TotalLabel, jan1, 1)}

		_, err := report.InterestPivot(rows, report.DefaultOptions())

		assert.ErrorIs(t, err, apperrors.ErrReservedCustomerLabel)
	})
}

func TestDeltas(t *testing.T) {
	assert.Empty(t, report.Deltas(nil))
	assert.Equal(t, []*float64{nil}, report.Deltas([]float64{5}))
}

func TestDailyTotals(t *testing.T) {
	t.Run("sums every customer per date ascending", func(t *testing.T) {
		_, accruals := testutil.SampleDashboardRows()
		accruals = append(accruals, testutil.NewAccrual("", testutil.Day(2025, 1, 1), 5))

		series := report.DailyTotals(accruals)

		assert.Equal(t, []model.DailyTotal{
			{Date: testutil.Day(2025, 1, 1), Total: 105},
			{Date: testutil.Day(2025, 1, 2), Total: 190},
			{Date: testutil.Day(2025, 1, 3), Total: 180},
		}, series)
	})

	t.Run("skips unreadable dates", func(t *testing.T) {
		series := report.DailyTotals([]model.AccrualRow{testutil.NewAccrual("A", time.Time{}, 5)})

		assert.Empty(t, series)
	})
}

func TestBuild(t *testing.T) {
	t.Run("runs all aggregators", func(t *testing.T) {
		positions, accruals := testutil.SampleDashboardRows()
		at := time.Date(2025, 1, 3, 8, 0, 0, 0, time.UTC)

		d, err := report.Build(positions, accruals, report.DefaultOptions(), at)

		require.NoError(t, err)
		assert.Equal(t, at, d.GeneratedAt)
		assert.Equal(t, len(positions), d.PositionRows)
		assert.Equal(t, len(accruals), d.AccrualRows)
		assert.Len(t, d.Summary, 3)
		assert.Equal(t, []string{"HPG", "VNM"}, d.Purchases.Codes)
		assert.Len(t, d.Interest.Dates, 3)
		assert.Len(t, d.DailyTotals, 3)
	})

	t.Run("summary is stored unfiltered", func(t *testing.T) {
		positions, accruals := testutil.SampleDashboardRows()
		opts := report.DefaultOptions()
		opts.MinNAV = 10_000_000

		d, err := report.Build(positions, accruals, opts, time.Now())

		require.NoError(t, err)
		assert.Len(t, d.Summary, 3)
		assert.Len(t, report.FilterByNAV(d.Summary, opts.MinNAV), 1)
	})

	t.Run("invalid options are rejected", func(t *testing.T) {
		opts := report.DefaultOptions()
		opts.MinNAV = -1

		_, err := report.Build(nil, nil, opts, time.Now())

		assert.ErrorIs(t, err, apperrors.ErrInvalidThreshold)
	})
}
