package sheets

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/apperrors"
)

// Field identifies a logical column of an export, independent of its header text.
type Field string

// Position export fields.
const (
	FieldCustomer          Field = "customer"
	FieldInstrumentCode    Field = "instrument_code"
	FieldQuantityPurchased Field = "quantity_purchased"
	FieldActive            Field = "active"
	FieldFeeAmount         Field = "fee_amount"
	FieldCurrentDebt       Field = "current_debt"
	FieldFinalProfitLoss   Field = "final_profit_loss"
	FieldNetAssetValue     Field = "net_asset_value"
)

// Accrual export fields.
const (
	FieldDailyInterest Field = "daily_interest"
	FieldDate          Field = "date"
)

// Column maps a field to the header text it is published under.
// Aliases are alternative headers accepted for the same field.
type Column struct {
	Field   Field
	Header  string
	Aliases []string
}

// Schema describes one exported sheet.
// HeaderRow is the zero-based index of the header line in the CSV export;
// lines above it are banner rows and are skipped.
type Schema struct {
	Name      string
	HeaderRow int
	Columns   []Column
}

// Binding maps each field of a schema to its column index in the export.
type Binding map[Field]int

// PositionSchema returns the schema of the position sheet.
func PositionSchema(headerRow int) Schema {
	return Schema{
		Name:      "positions",
		HeaderRow: headerRow,
		Columns: []Column{
			{Field: FieldCustomer, Header: "Khách hàng", Aliases: []string{"khach_hang", "customer"}},
			{Field: FieldInstrumentCode, Header: "Mã", Aliases: []string{"ma", "code"}},
			{Field: FieldQuantityPurchased, Header: "Số lượng mua", Aliases: []string{"so_luong_mua", "quantity"}},
			{Field: FieldActive, Header: "ON/OFF", Aliases: []string{"on_off", "active"}},
			{Field: FieldFeeAmount, Header: "Tiền bán phí", Aliases: []string{"tien_ban_phi", "fee"}},
			{Field: FieldCurrentDebt, Header: "Dư nợ hiện tại", Aliases: []string{"du_no_hien_tai", "debt"}},
			{Field: FieldFinalProfitLoss, Header: "Lãi lỗ sau cùng", Aliases: []string{"lai_lo_sau_cung", "profit_loss"}},
			{Field: FieldNetAssetValue, Header: "NAV", Aliases: []string{"nav"}},
		},
	}
}

// AccrualSchema returns the schema of the daily interest sheet.
func AccrualSchema(headerRow int) Schema {
	return Schema{
		Name:      "accruals",
		HeaderRow: headerRow,
		Columns: []Column{
			{Field: FieldCustomer, Header: "Khách hàng", Aliases: []string{"khach_hang", "customer"}},
			{Field: FieldDailyInterest, Header: "Lãi vay ngày", Aliases: []string{"lai_vay_ngay", "daily_interest"}},
			{Field: FieldDate, Header: "Ngày", Aliases: []string{"ngay", "date"}},
		},
	}
}

// Bind resolves every schema column against the export header by name.
//
// Header text is compared after trimming, case folding and collapsing inner
// whitespace. Columns that are not part of the schema are ignored.
//
// Returns:
//   - Binding: column index per field
//   - error: ErrInvalidCSVHeaders when a field has no column,
//     ErrDuplicateCSVHeader when two columns resolve to the same field
func (s Schema) Bind(header []string) (Binding, error) {
	accepted := make(map[string]Field)
	for _, c := range s.Columns {
		accepted[normalizeHeader(c.Header)] = c.Field
		for _, a := range c.Aliases {
			accepted[normalizeHeader(a)] = c.Field
		}
	}

	binding := make(Binding, len(s.Columns))
	for i, h := range header {
		field, ok := accepted[normalizeHeader(h)]
		if !ok {
			continue
		}
		if prev, seen := binding[field]; seen {
			return nil, fmt.Errorf("%w: %s columns %d and %d both map to %q",
				apperrors.ErrDuplicateCSVHeader, s.Name, prev+1, i+1, field)
		}
		binding[field] = i
	}

	var missing []string
	for _, c := range s.Columns {
		if _, ok := binding[c.Field]; !ok {
			missing = append(missing, c.Header)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s missing %s (found %s)",
			apperrors.ErrInvalidCSVHeaders, s.Name, quoteAll(missing), quoteAll(header))
	}
	return binding, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
