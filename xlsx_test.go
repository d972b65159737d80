package tabexport

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, rows []Row, sheet string) *excelize.File {
	t.Helper()
	data, err := buildWorkbook(rows, sheet, DefaultConfig().Theme)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestBuildWorkbookTotals(t *testing.T) {
	t.Parallel()
	rows := []Row{
		NewRow("region", "north", "amount", 10),
		NewRow("region", "south", "amount", 20),
		NewRow("region", "east", "amount", 30),
	}
	f := openWorkbook(t, rows, "Sales")

	label, err := f.GetCellValue("Sales", "A5")
	require.NoError(t, err)
	assert.Equal(t, totalLabel, label)

	formula, err := f.GetCellFormula("Sales", "B5")
	require.NoError(t, err)
	assert.Equal(t, "SUM(B2:B4)", formula)

	total, err := f.CalcCellValue("Sales", "B5")
	require.NoError(t, err)
	assert.Equal(t, "60", total)
}

func TestBuildWorkbookSingleNumericColumn(t *testing.T) {
	t.Parallel()
	rows := []Row{NewRow("amount", 10), NewRow("amount", 20), NewRow("amount", 30)}
	f := openWorkbook(t, rows, "Sheet")

	formula, err := f.GetCellFormula("Sheet", "A5")
	require.NoError(t, err)
	assert.Equal(t, "SUM(A2:A4)", formula)

	total, err := f.CalcCellValue("Sheet", "A5")
	require.NoError(t, err)
	assert.Equal(t, "60", total)
}

func TestBuildWorkbookNoNumericColumns(t *testing.T) {
	t.Parallel()
	f := openWorkbook(t, []Row{NewRow("name", "a"), NewRow("name", "b")}, "Names")
	got, err := f.GetRows("Names")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Name"}, {"a"}, {"b"}}, got)
}

func TestBuildWorkbookHeader(t *testing.T) {
	t.Parallel()
	f := openWorkbook(t, []Row{NewRow("file_name", "a", "size_bytes", 1)}, "Uploads")

	for cell, want := range map[string]string{"A1": "File Name", "B1": "Size Bytes"} {
		got, err := f.GetCellValue("Uploads", cell)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	styleID, err := f.GetCellStyle("Uploads", "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
	require.NotNil(t, style.Alignment)
	assert.Equal(t, "center", style.Alignment.Horizontal)
	assert.Equal(t, "pattern", style.Fill.Type)
}

func TestBuildWorkbookFilterAndFreeze(t *testing.T) {
	t.Parallel()
	f := openWorkbook(t, []Row{NewRow("a", 1, "b", 2, "c", "x")}, "Data")

	panes, err := f.GetPanes("Data")
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
	assert.Equal(t, "A2", panes.TopLeftCell)

	var filter *excelize.DefinedName
	for _, dn := range f.GetDefinedName() {
		if dn.Name == "_xlnm._FilterDatabase" {
			filter = &dn
			break
		}
	}
	require.NotNil(t, filter, "auto-filter defined name missing")
	assert.Contains(t, filter.RefersTo, "$A$1:$C$1")
}

func TestBuildWorkbookCellTypes(t *testing.T) {
	t.Parallel()
	rows := []Row{NewRow("created", "2026-01-31T00:00:00Z", "active", true, "note", "2026-99-99 nope", "gone", nil)}
	f := openWorkbook(t, rows, "Types")

	raw, err := f.GetCellValue("Types", "A2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	serial, err := strconv.ParseFloat(raw, 64)
	require.NoError(t, err, "date cell should hold a serial number, got %q", raw)
	date, err := excelize.ExcelDateToTime(serial, false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), date.UTC())

	active, err := f.GetCellValue("Types", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Yes", active)

	note, err := f.GetCellValue("Types", "C2")
	require.NoError(t, err)
	assert.Equal(t, "2026-99-99 nope", note)

	gone, err := f.GetCellValue("Types", "D2")
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestBuildWorkbookEmpty(t *testing.T) {
	t.Parallel()
	f := openWorkbook(t, nil, "Uploads")
	assert.Equal(t, []string{"Uploads"}, f.GetSheetList())
	got, err := f.GetRows("Uploads")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSanitizeSheetName(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"Uploads":        "Uploads",
		"":               defaultSheetName,
		"  ":             defaultSheetName,
		"Q1/Q2 [draft]?": "Q1Q2 draft",
		"'quoted'":       "quoted",
		strings.Repeat("x", 40): strings.Repeat("x", maxSheetNameLen),
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, sanitizeSheetName(in))
		})
	}
}
