package repository

import (
	"fmt"
	"time"
)

// timeLayout is a fixed-width UTC timestamp so stored values sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders t in the stored timestamp layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ParseTime parses a timestamp written by FormatTime.
func ParseTime(str string) (time.Time, error) {
	t, err := time.Parse(timeLayout, str)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date: %q: %w", str, err)
	}
	return t.UTC(), nil
}
