package exportsvc

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/hrms/core"
)

var table = core.Table{
	Name:   "employees",
	Header: []string{"Code", "Name", "Note"},
	Rows: [][]string{
		{"E001", "Ada Lovelace", ""},
		{"E002", "Grace, Hopper", "=SUM(A1:A2)"},
	},
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", CSV, false},
		{"CSV", CSV, false},
		{" xlsx ", XLSX, false},
		{"pdf", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFormat(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, table, CSV))

	want := "Code,Name,Note\nE001,Ada Lovelace,\nE002,\"Grace, Hopper\",'=SUM(A1:A2)\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, table, XLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("employees")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, table.Header, rows[0])
	assert.Equal(t, []string{"E001", "Ada Lovelace"}, rows[1])
	assert.Equal(t, "Grace, Hopper", rows[2][1])
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 1, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, "employees-20240301-1504.xlsx", Filename(table, XLSX, now))
}
