// Package export renders a dashboard view as an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
)

// Sheet names of the workbook, in order.
const (
	SheetSummary     = "NAV ngày"
	SheetPurchases   = "Số lượng mua"
	SheetInterest    = "Lãi vay theo ngày"
	SheetDailyTotals = "Tổng lãi vay theo ngày"
)

// ContentType is the MIME type of the written workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SummaryHeaders are the column titles of the summary sheet.
var SummaryHeaders = []string{"Khách hàng", "NAV", "Tiền bán phí", "Dư nợ hiện tại", "Lãi lỗ sau cùng", "NAV/Danh mục"}

const (
	customerHeader = "Khách hàng"
	dateHeader     = "Ngày"
	totalHeader    = "Tổng lãi vay"
)

// WriteWorkbook writes the four dashboard views as sheets of one workbook.
//
// Cells hold raw numbers; number formatting is left to the spreadsheet.
// Absent cells (nil ratios, the earliest date's delta, total row deltas)
// are left empty. Column maxima of the summary and the largest purchase
// quantity are highlighted.
func WriteWorkbook(w io.Writer, view model.DashboardView) error {
	f := excelize.NewFile()
	defer f.Close()

	wb := &workbook{f: f}
	if err := wb.init(); err != nil {
		return err
	}

	wb.summary(view.Summary)
	wb.purchases(view.Purchases)
	wb.interest(view.Interest)
	wb.dailyTotals(view.DailyTotals)
	if wb.err != nil {
		return wb.err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// workbook keeps the first error so the sheet writers stay linear.
type workbook struct {
	f         *excelize.File
	bold      int
	highlight int
	date      int
	err       error
}

func (wb *workbook) init() error {
	if err := wb.f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	for _, name := range []string{SheetPurchases, SheetInterest, SheetDailyTotals} {
		if _, err := wb.f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	var err error
	if wb.bold, err = wb.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	wb.highlight, err = wb.f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFF2CC"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	dateFormat := "dd/mm/yyyy"
	if wb.date, err = wb.f.NewStyle(&excelize.Style{CustomNumFmt: &dateFormat}); err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	return nil
}

// set writes values into row (1-based) starting at column 1. Nil values are skipped.
func (wb *workbook) set(sheet string, row int, values ...any) {
	for i, v := range values {
		if wb.err != nil || v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			wb.err = err
			return
		}
		if err := wb.f.SetCellValue(sheet, cell, v); err != nil {
			wb.err = fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
		}
	}
}

func (wb *workbook) style(sheet string, col, row, style int) {
	if wb.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		wb.err = err
		return
	}
	if err := wb.f.SetCellStyle(sheet, cell, cell, style); err != nil {
		wb.err = fmt.Errorf("failed to style %s!%s: %w", sheet, cell, err)
	}
}

func (wb *workbook) header(sheet string, titles []string) {
	values := make([]any, len(titles))
	for i, t := range titles {
		values[i] = t
		wb.style(sheet, i+1, 1, wb.bold)
	}
	wb.set(sheet, 1, values...)
}

func (wb *workbook) summary(view model.SummaryView) {
	wb.header(SheetSummary, SummaryHeaders)

	for i, r := range view.Rows {
		row := i + 2
		var ratio any
		if r.Ratio != nil {
			ratio = *r.Ratio
		}
		wb.set(SheetSummary, row, r.Customer, r.NetAssetValue, r.PortfolioValue, r.CurrentDebt, r.ProfitLoss, ratio)

		m := view.Maxima
		marks := []bool{
			m.NetAssetValue.OK && r.NetAssetValue == m.NetAssetValue.Value,
			m.PortfolioValue.OK && r.PortfolioValue == m.PortfolioValue.Value,
			m.CurrentDebt.OK && r.CurrentDebt == m.CurrentDebt.Value,
			m.ProfitLoss.OK && r.ProfitLoss == m.ProfitLoss.Value,
			m.Ratio.OK && r.Ratio != nil && *r.Ratio == m.Ratio.Value,
		}
		for c, marked := range marks {
			if marked {
				wb.style(SheetSummary, c+2, row, wb.highlight)
			}
		}
	}
}

func (wb *workbook) purchases(p model.PurchasePivot) {
	titles := append([]string{customerHeader}, p.Codes...)
	wb.header(SheetPurchases, titles)

	best, hasBest := p.MaxQuantity()
	for i, r := range p.Rows {
		row := i + 2
		wb.set(SheetPurchases, row, purchaseValues(r)...)
		for c, q := range r.Quantities {
			if hasBest && q == best {
				wb.style(SheetPurchases, c+2, row, wb.highlight)
			}
		}
	}

	if p.Total != nil {
		row := len(p.Rows) + 2
		wb.set(SheetPurchases, row, purchaseValues(*p.Total)...)
		wb.style(SheetPurchases, 1, row, wb.bold)
	}
}

func purchaseValues(r model.PurchaseRow) []any {
	values := make([]any, 0, len(r.Quantities)+1)
	values = append(values, r.Customer)
	for _, q := range r.Quantities {
		values = append(values, q)
	}
	return values
}

func (wb *workbook) interest(p model.InterestPivot) {
	titles := make([]string, 0, len(p.Columns)+1)
	titles = append(titles, customerHeader)
	for _, c := range p.Columns {
		titles = append(titles, c.Label)
	}
	wb.header(SheetInterest, titles)

	for i, r := range p.Rows {
		wb.set(SheetInterest, i+2, interestValues(p, r)...)
	}
	if p.Total != nil {
		row := len(p.Rows) + 2
		wb.set(SheetInterest, row, interestValues(p, *p.Total)...)
		wb.style(SheetInterest, 1, row, wb.bold)
	}
}

func interestValues(p model.InterestPivot, r model.InterestRow) []any {
	values := make([]any, 0, len(p.Columns)+1)
	values = append(values, r.Customer)
	for _, c := range p.Columns {
		if v := p.Cell(r, c); v != nil {
			values = append(values, *v)
		} else {
			values = append(values, nil)
		}
	}
	return values
}

func (wb *workbook) dailyTotals(series []model.DailyTotal) {
	wb.header(SheetDailyTotals, []string{dateHeader, totalHeader})
	for i, d := range series {
		wb.set(SheetDailyTotals, i+2, d.Date, d.Total)
		wb.style(SheetDailyTotals, 1, i+2, wb.date)
	}
}
