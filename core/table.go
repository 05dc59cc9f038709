package core

import "time"

// Table is a tabular rendering of a list, used for CSV and XLSX exports.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// FormatClock renders an optional instant as "HH:MM" in loc, "" for nil.
func FormatClock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format("15:04")
}
