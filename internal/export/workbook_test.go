package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/export"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/report"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/testutil"
)

func sampleView(t *testing.T, minNAV float64) model.DashboardView {
	t.Helper()
	positions, accruals := testutil.SampleDashboardRows()
	d, err := report.Build(positions, accruals, report.DefaultOptions(), time.Date(2025, 1, 3, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	rows := report.FilterByNAV(d.Summary, minNAV)
	return model.DashboardView{
		SnapshotID:  testutil.MakeID(),
		GeneratedAt: d.GeneratedAt,
		Summary:     model.SummaryView{MinNAV: minNAV, Rows: rows, Maxima: report.SummaryMaxima(rows)},
		Purchases:   d.Purchases,
		Interest:    d.Interest,
		DailyTotals: d.DailyTotals,
	}
}

func readRows(t *testing.T, f *excelize.File, sheet string) [][]string {
	t.Helper()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

// TestWriteWorkbook tests the XLSX export.
//
// WHY: The workbook is handed to people who never see the API. It must carry
// the same numbers as the JSON views, including absent delta cells, and only
// the customers above the display threshold.
func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteWorkbook(&buf, sampleView(t, 1_000_000)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	t.Run("sheets in order", func(t *testing.T) {
		assert.Equal(t, []string{
			export.SheetSummary,
			export.SheetPurchases,
			export.SheetInterest,
			export.SheetDailyTotals,
		}, f.GetSheetList())
	})

	t.Run("summary honours threshold", func(t *testing.T) {
		rows := readRows(t, f, export.SheetSummary)

		require.Len(t, rows, 3)
		assert.Equal(t, export.SummaryHeaders, rows[0])
		assert.Equal(t, "KH01", rows[1][0])
		assert.Equal(t, "45000000", rows[1][1])
		assert.Equal(t, "KH02", rows[2][0])
	})

	t.Run("purchases with total row", func(t *testing.T) {
		rows := readRows(t, f, export.SheetPurchases)

		require.Len(t, rows, 4)
		assert.Equal(t, []string{"Khách hàng", "HPG", "VNM"}, rows[0])
		assert.Equal(t, []string{"KH01", "1000", "200"}, rows[1])
		assert.Equal(t, []string{"KH02", "300", "0"}, rows[2])
		assert.Equal(t, []string{model.TotalLabel, "1300", "200"}, rows[3])
	})

	t.Run("interest with delta columns", func(t *testing.T) {
		rows := readRows(t, f, export.SheetInterest)

		require.Len(t, rows, 4)
		assert.Equal(t, []string{"Khách hàng", "03/01/2025", "Δ 03/01/2025", "02/01/2025", "Δ 02/01/2025", "01/01/2025"}, rows[0])
		assert.Equal(t, []string{"KH01", "120", "-30", "150", "50", "100"}, rows[1])
		assert.Equal(t, []string{model.TotalLabel, "180", "", "190", "", "100"}, rows[3])
	})

	t.Run("daily totals", func(t *testing.T) {
		rows := readRows(t, f, export.SheetDailyTotals)

		require.Len(t, rows, 4)
		assert.Equal(t, []string{"01/01/2025", "100"}, rows[1])
		assert.Equal(t, []string{"03/01/2025", "180"}, rows[3])
	})

	t.Run("daily total dates are date cells", func(t *testing.T) {
		first, err := f.GetCellValue(export.SheetDailyTotals, "A2", excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		last, err := f.GetCellValue(export.SheetDailyTotals, "A4", excelize.Options{RawCellValue: true})
		require.NoError(t, err)

		// Excel serial day numbers of 2025-01-01 and 2025-01-03.
		assert.Equal(t, "45658", first)
		assert.Equal(t, "45660", last)
	})
}

func TestWriteWorkbookEmpty(t *testing.T) {
	var buf bytes.Buffer
	view := model.DashboardView{Purchases: model.PurchasePivot{Total: &model.PurchaseRow{Customer: model.TotalLabel}}}

	require.NoError(t, export.WriteWorkbook(&buf, view))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, readRows(t, f, export.SheetSummary), 1)
}
