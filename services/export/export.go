package exportsvc

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/hrms/core"
)

type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

var ErrUnknownFormat = errors.New("format must be one of csv or xlsx")

// ParseFormat defaults to CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", CSV:
		return CSV, nil
	case XLSX:
		return XLSX, nil
	default:
		return "", ErrUnknownFormat
	}
}

func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename names the export of tbl made at now, e.g. "attendance-20240301-1504.csv".
func Filename(tbl core.Table, f Format, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", tbl.Name, now.Format("20060102-1504"), f)
}

func Write(w io.Writer, tbl core.Table, f Format) error {
	switch f {
	case CSV:
		return WriteCSV(w, tbl)
	case XLSX:
		return WriteXLSX(w, tbl)
	default:
		return ErrUnknownFormat
	}
}

func WriteCSV(w io.Writer, tbl core.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tbl.Header); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	for _, row := range tbl.Rows {
		if err := cw.Write(sanitizeRow(row)); err != nil {
			return errors.Wrap(err, "writing csv row")
		}
	}
	cw.Flush()
	return cw.Error()
}

// sanitizeRow neutralizes cells a spreadsheet would evaluate as formulas.
func sanitizeRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		if cell != "" && strings.ContainsRune("=+-@", rune(cell[0])) {
			cell = "'" + cell
		}
		out[i] = cell
	}
	return out
}

func WriteXLSX(w io.Writer, tbl core.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(tbl.Name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	header := make([]interface{}, len(tbl.Header))
	for i, h := range tbl.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "writing xlsx header")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return errors.Wrap(err, "styling header")
	}

	for i, row := range tbl.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.Wrap(err, "writing xlsx row")
		}
	}

	if len(tbl.Header) > 0 {
		last, err := excelize.ColumnNumberToName(len(tbl.Header))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
			return errors.Wrap(err, "sizing columns")
		}
	}
	_, err = f.WriteTo(w)
	return err
}

// sheetName fits name in the 31 characters a sheet name may have.
func sheetName(name string) string {
	if name == "" {
		return "Export"
	}
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
