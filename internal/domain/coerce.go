package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Survey exports are inconsistent about timestamp formatting: Qualtrics CSV
// uses "2006-01-02 15:04:05", re-saved spreadsheets often rewrite dates in a
// US layout, and XLSX cells sometimes surface as raw date serials. Layouts
// are tried in order; first parse wins.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"1/2/2006 15:04",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	"01/02/2006",
	"2006/01/02",
	"Jan 2, 2006",
}

// parseFloatOrNil parses a cell as float64, returning nil for empty or
// non-numeric values. Coercion failures are never fatal at the row level.
func parseFloatOrNil(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseTimeOrNil parses a cell as a UTC timestamp, returning nil on failure.
// Numeric values in the Excel serial date range are converted via the
// spreadsheet epoch before the layout fallbacks are tried.
func parseTimeOrNil(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		// 20000..80000 covers 1954..2119; plain years and coordinates
		// parse as floats too, so the range check keeps them out.
		if serial >= 20000 && serial <= 80000 {
			if parsed, err := excelize.ExcelDateToTime(serial, false); err == nil {
				t := parsed.UTC()
				return &t
			}
		}
		return nil
	}

	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t := parsed.UTC()
			return &t
		}
	}
	return nil
}
