package report_test

import (
	"database/sql"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/parse"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/report"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/testutil"
)

// TestSummarize tests the per-customer NAV summary.
//
// WHY: The summary mixes two aggregations, NAV over every row and the
// portfolio/debt/profit fields over ON rows only. Mixing them up, or letting
// rows without a customer leak in, silently misreports a customer's position.
func TestSummarize(t *testing.T) {
	t.Run("rows without customer never appear", func(t *testing.T) {
		rows := []model.PositionRow{
			testutil.NewPosition("").WithNAV(1_000).WithFee(500).Build(),
			testutil.NewPosition("KH01").WithNAV(200).WithFee(100).Build(),
		}

		summary := report.Summarize(rows)

		require.Len(t, summary, 1)
		assert.Equal(t, "KH01", summary[0].Customer)
		assert.Equal(t, 200.0, summary[0].NetAssetValue)
	})

	t.Run("NAV sums every row regardless of flag", func(t *testing.T) {
		rows := []model.PositionRow{
			testutil.NewPosition("KH01").WithNAV(100).Build(),
			testutil.NewPosition("KH01").WithNAV(250).Off().Build(),
			testutil.NewPosition("KH01").WithNAV(-50).Build(),
		}

		summary := report.Summarize(rows)

		require.Len(t, summary, 1)
		assert.Equal(t, 300.0, summary[0].NetAssetValue)
	})

	t.Run("portfolio debt and profit only include ON rows", func(t *testing.T) {
		rows := []model.PositionRow{
			testutil.NewPosition("KH01").WithFee(1_000).WithDebt(400).WithProfitLoss(30).WithNAV(600).Build(),
			testutil.NewPosition("KH01").WithFee(9_999).WithDebt(9_999).WithProfitLoss(9_999).WithNAV(0).Off().Build(),
		}

		summary := report.Summarize(rows)

		require.Len(t, summary, 1)
		assert.Equal(t, 1_000.0, summary[0].PortfolioValue)
		assert.Equal(t, 400.0, summary[0].CurrentDebt)
		assert.Equal(t, 30.0, summary[0].ProfitLoss)
	})

	t.Run("customer without ON rows keeps zero active fields and nil ratio", func(t *testing.T) {
		rows := []model.PositionRow{
			testutil.NewPosition("KH09").WithFee(700).WithNAV(500).Off().Build(),
		}

		summary := report.Summarize(rows)

		require.Len(t, summary, 1)
		assert.Equal(t, 500.0, summary[0].NetAssetValue)
		assert.Zero(t, summary[0].PortfolioValue)
		assert.Zero(t, summary[0].CurrentDebt)
		assert.Zero(t, summary[0].ProfitLoss)
		assert.Nil(t, summary[0].Ratio)
	})

	t.Run("ratio is NAV over portfolio value", func(t *testing.T) {
		rows := []model.PositionRow{
			testutil.NewPosition("KH01").WithFee(400).WithNAV(100).Build(),
		}

		summary := report.Summarize(rows)

		require.NotNil(t, summary[0].Ratio)
		assert.Equal(t, 100.0/400.0, *summary[0].Ratio)
	})

	t.Run("ratio is nil when portfolio value sums to zero", func(t *testing.T) {
		rows := []model.PositionRow{
			testutil.NewPosition("KH01").WithFee(300).WithNAV(100).Build(),
			testutil.NewPosition("KH01").WithFee(-300).Build(),
		}

		summary := report.Summarize(rows)

		assert.Nil(t, summary[0].Ratio)
	})

	t.Run("ratio is nil when the quotient overflows", func(t *testing.T) {
		rows := []model.PositionRow{
			testutil.NewPosition("KH01").WithFee(0.5).WithNAV(math.MaxFloat64).Build(),
		}

		summary := report.Summarize(rows)

		assert.Nil(t, summary[0].Ratio)
	})

	t.Run("out of range cell counts as absent", func(t *testing.T) {
		row := testutil.NewPosition("KH01").WithFee(1_000).Build()
		row.NetAssetValue = parse.Number("1e400")
		rows := []model.PositionRow{
			row,
			testutil.NewPosition("KH01").WithNAV(500).Build(),
		}

		summary := report.Summarize(rows)

		require.Len(t, summary, 1)
		assert.Equal(t, 500.0, summary[0].NetAssetValue)
		require.NotNil(t, summary[0].Ratio)
		assert.Equal(t, 0.5, *summary[0].Ratio)
		_, err := json.Marshal(summary)
		assert.NoError(t, err)
	})

	t.Run("absent cells are zero filled", func(t *testing.T) {
		rows := []model.PositionRow{
			{Customer: "KH01", Active: model.FlagOn, NetAssetValue: sql.NullFloat64{}},
		}

		summary := report.Summarize(rows)

		require.Len(t, summary, 1)
		assert.Zero(t, summary[0].NetAssetValue)
		assert.Zero(t, summary[0].PortfolioValue)
		assert.Nil(t, summary[0].Ratio)
	})

	t.Run("customers are ordered ascending", func(t *testing.T) {
		rows := []model.PositionRow{
			testutil.NewPosition("KH03").Build(),
			testutil.NewPosition("KH01").Build(),
			testutil.NewPosition("KH02").Build(),
		}

		summary := report.Summarize(rows)

		require.Len(t, summary, 3)
		assert.Equal(t, []string{"KH01", "KH02", "KH03"}, []string{summary[0].Customer, summary[1].Customer, summary[2].Customer})
	})

	t.Run("empty input yields empty summary", func(t *testing.T) {
		summary := report.Summarize(nil)

		assert.NotNil(t, summary)
		assert.Empty(t, summary)
	})

	t.Run("running twice yields identical output", func(t *testing.T) {
		positions, _ := testutil.SampleDashboardRows()

		assert.Equal(t, report.Summarize(positions), report.Summarize(positions))
	})
}

// TestFilterByNAV tests the display threshold.
//
// WHY: The threshold must hide small customers from the view without
// changing the sums of customers that remain.
func TestFilterByNAV(t *testing.T) {
	rows := []model.PositionRow{
		testutil.NewPosition("SMALL").WithNAV(50_000).WithFee(10_000).Build(),
		testutil.NewPosition("LARGE").WithNAV(100_000).WithFee(20_000).Build(),
		testutil.NewPosition("LARGE").WithNAV(50_000).Build(),
	}
	summary := report.Summarize(rows)

	t.Run("suppresses customers below threshold", func(t *testing.T) {
		filtered := report.FilterByNAV(summary, 100_000)

		require.Len(t, filtered, 1)
		assert.Equal(t, "LARGE", filtered[0].Customer)
		assert.Equal(t, 150_000.0, filtered[0].NetAssetValue)
		assert.Equal(t, 20_000.0, filtered[0].PortfolioValue)
	})

	t.Run("compares absolute NAV", func(t *testing.T) {
		negative := []model.CustomerSummary{{Customer: "NEG", NetAssetValue: -200_000}}

		assert.Len(t, report.FilterByNAV(negative, 100_000), 1)
	})

	t.Run("zero threshold keeps every row", func(t *testing.T) {
		assert.Equal(t, summary, report.FilterByNAV(summary, 0))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		before := len(summary)
		report.FilterByNAV(summary, 1_000_000)

		assert.Len(t, summary, before)
	})
}

func TestSummaryMaxima(t *testing.T) {
	t.Run("empty summary reports no maxima", func(t *testing.T) {
		m := report.SummaryMaxima(nil)

		assert.False(t, m.NetAssetValue.OK)
		assert.False(t, m.PortfolioValue.OK)
		assert.False(t, m.Ratio.OK)
	})

	t.Run("finds column maxima and ignores nil ratios", func(t *testing.T) {
		ratio := 0.5
		rows := []model.CustomerSummary{
			{Customer: "A", NetAssetValue: -10, PortfolioValue: 0, CurrentDebt: 5, ProfitLoss: -1},
			{Customer: "B", NetAssetValue: -3, PortfolioValue: 8, CurrentDebt: 2, ProfitLoss: -7, Ratio: &ratio},
		}

		m := report.SummaryMaxima(rows)

		assert.Equal(t, model.ColumnMax{Value: -3, OK: true}, m.NetAssetValue)
		assert.Equal(t, model.ColumnMax{Value: 8, OK: true}, m.PortfolioValue)
		assert.Equal(t, model.ColumnMax{Value: 5, OK: true}, m.CurrentDebt)
		assert.Equal(t, model.ColumnMax{Value: -1, OK: true}, m.ProfitLoss)
		assert.Equal(t, model.ColumnMax{Value: 0.5, OK: true}, m.Ratio)
	})
}
