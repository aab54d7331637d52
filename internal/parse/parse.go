// Package parse coerces spreadsheet text cells into typed values.
// Coercion never fails loudly: a cell that cannot be read becomes an absent
// value so aggregation can proceed over partially dirty input.
package parse

import (
	"database/sql"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
)

var blankNumbers = map[string]bool{
	"":     true,
	"-":    true,
	"n/a":  true,
	"na":   true,
	"#n/a": true,
}

var numberCleaner = strings.NewReplacer(
	",", "",
	" ", "",
	"\u00a0", "",
	"\u202f", "",
)

// Number parses a thousand-separated number such as "1,234,567.5".
// Empty, unparseable or out of range cells return an invalid NullFloat64.
func Number(s string) sql.NullFloat64 {
	cleaned := numberCleaner.Replace(strings.TrimSpace(s))
	if blankNumbers[strings.ToLower(cleaned)] {
		return sql.NullFloat64{}
	}
	cleaned = strings.TrimPrefix(cleaned, "+")

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return sql.NullFloat64{}
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// dateLayouts are tried in order. Slash dates are read day first.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
	"2/1/2006 15:04:05",
	time.RFC3339,
}

// Date parses a calendar date and truncates it to midnight UTC.
// The second return value is false when no layout matches.
func Date(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// Flag reads an ON/OFF cell. Anything other than ON counts as OFF.
func Flag(s string) model.ActiveFlag {
	if strings.EqualFold(strings.TrimSpace(s), string(model.FlagOn)) {
		return model.FlagOn
	}
	return model.FlagOff
}

// Text trims a label cell. An empty result means the value is missing.
func Text(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
}
