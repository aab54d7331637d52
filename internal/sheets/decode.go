package sheets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/parse"
)

// record wraps one CSV line with the binding of its export.
// Cells past the end of a short line read as empty.
type record struct {
	cells   []string
	binding Binding
}

func (r record) get(f Field) string {
	i, ok := r.binding[f]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

// DecodePositions reads a position export.
//
// Lines above schema.HeaderRow are skipped, the header line is bound by
// name and every following non-blank line becomes one row. Cells that do
// not parse as numbers are kept as absent values.
func DecodePositions(r io.Reader, schema Schema) ([]model.PositionRow, error) {
	records, err := readRecords(r, schema)
	if err != nil {
		return nil, err
	}

	rows := make([]model.PositionRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, model.PositionRow{
			Customer:          parse.Text(rec.get(FieldCustomer)),
			InstrumentCode:    parse.Text(rec.get(FieldInstrumentCode)),
			QuantityPurchased: parse.Number(rec.get(FieldQuantityPurchased)),
			FeeAmount:         parse.Number(rec.get(FieldFeeAmount)),
			CurrentDebt:       parse.Number(rec.get(FieldCurrentDebt)),
			FinalProfitLoss:   parse.Number(rec.get(FieldFinalProfitLoss)),
			NetAssetValue:     parse.Number(rec.get(FieldNetAssetValue)),
			Active:            parse.Flag(rec.get(FieldActive)),
		})
	}
	return rows, nil
}

// DecodeAccruals reads a daily interest export.
// Dates that cannot be read are left as the zero time.
func DecodeAccruals(r io.Reader, schema Schema) ([]model.AccrualRow, error) {
	records, err := readRecords(r, schema)
	if err != nil {
		return nil, err
	}

	rows := make([]model.AccrualRow, 0, len(records))
	for _, rec := range records {
		date, _ := parse.Date(rec.get(FieldDate))
		rows = append(rows, model.AccrualRow{
			Customer:      parse.Text(rec.get(FieldCustomer)),
			Date:          date,
			DailyInterest: parse.Number(rec.get(FieldDailyInterest)),
		})
	}
	return rows, nil
}

func readRecords(r io.Reader, schema Schema) ([]record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var header []string
	for line := 0; line <= schema.HeaderRow; line++ {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s has no header at line %d", apperrors.ErrEmptyExport, schema.Name, schema.HeaderRow+1)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s export: %w", schema.Name, err)
		}
		header = cells
	}

	binding, err := schema.Bind(header)
	if err != nil {
		return nil, err
	}

	var records []record
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s export: %w", schema.Name, err)
		}
		if blank(cells) {
			continue
		}
		records = append(records, record{cells: cells, binding: binding})
	}
	return records, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
