package tabexport

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"
)

const (
	defaultSheetName = "Export"
	maxSheetNameLen  = 31
	minColWidth      = 8
	maxColWidth      = 60
	totalLabel       = "TOTAL"
)

type sheetStyles struct {
	header, body, band, date, dateBand, total int
}

// buildWorkbook renders rows as a single-sheet workbook. The header row is
// styled, filtered, and frozen. Numeric columns get a trailing live SUM
// formula. An empty row set yields an empty sheet with no header.
func buildWorkbook(rows []Row, sheetName string, theme Theme) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sanitizeSheetName(sheetName)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, newRenderError(Excel, err)
	}

	if len(rows) > 0 {
		if err := fillSheet(f, sheet, rows, theme); err != nil {
			return nil, newRenderError(Excel, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, newRenderError(Excel, err)
	}
	return buf.Bytes(), nil
}

func fillSheet(f *excelize.File, sheet string, rows []Row, theme Theme) error {
	cols := Columns(rows)
	if len(cols) == 0 {
		return nil
	}
	styles, err := newSheetStyles(f, theme)
	if err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(len(cols))
	if err != nil {
		return err
	}
	widths := make([]int, len(cols))

	for i, c := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, c.Title); err != nil {
			return err
		}
		widths[i] = runewidth.StringWidth(c.Title)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", styles.header); err != nil {
		return err
	}

	for r, row := range rows {
		excelRow := r + 2
		rowStyle, dateStyle := styles.body, styles.date
		if r%2 == 0 {
			rowStyle, dateStyle = styles.band, styles.dateBand
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", excelRow), fmt.Sprintf("%s%d", lastCol, excelRow), rowStyle); err != nil {
			return err
		}
		for i, c := range cols {
			v, _ := row.Get(c.Key)
			if v.IsNull() {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, excelRow)
			val := FormatValue(v, TargetSheet)
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
			if _, ok := val.(time.Time); ok {
				if err := f.SetCellStyle(sheet, cell, cell, dateStyle); err != nil {
					return err
				}
			}
			if w := runewidth.StringWidth(v.String()); w > widths[i] {
				widths[i] = w
			}
		}
	}

	if err := writeTotals(f, sheet, cols, len(rows), lastCol, styles.total); err != nil {
		return err
	}

	for i, w := range widths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, float64(clamp(w+2, minColWidth, maxColWidth))); err != nil {
			return err
		}
	}

	if err := f.AutoFilter(sheet, "A1:"+lastCol+"1", nil); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// writeTotals appends the aggregate row when at least one column is numeric.
// The label goes in the first column unless that column holds a formula.
func writeTotals(f *excelize.File, sheet string, cols []Column, n int, lastCol string, style int) error {
	if !hasNumeric(cols) {
		return nil
	}
	totalRow := n + 2
	if !cols[0].Numeric {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), totalLabel); err != nil {
			return err
		}
	}
	for i, c := range cols {
		if !c.Numeric {
			continue
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		formula := fmt.Sprintf("SUM(%s2:%s%d)", name, name, n+1)
		if err := f.SetCellFormula(sheet, fmt.Sprintf("%s%d", name, totalRow), formula); err != nil {
			return err
		}
	}
	return f.SetCellStyle(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastCol, totalRow), style)
}

func newSheetStyles(f *excelize.File, theme Theme) (sheetStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: theme.BorderColor, Style: 1},
		{Type: "right", Color: theme.BorderColor, Style: 1},
		{Type: "top", Color: theme.BorderColor, Style: 1},
		{Type: "bottom", Color: theme.BorderColor, Style: 1},
	}
	band := excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{theme.BandFill}}
	dateFmt := theme.DateFormat

	defs := []*excelize.Style{
		{
			Font:      &excelize.Font{Bold: true, Color: theme.HeaderFont},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{theme.HeaderFill}},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    border,
		},
		{Border: border},
		{Border: border, Fill: band},
		{Border: border, CustomNumFmt: &dateFmt},
		{Border: border, Fill: band, CustomNumFmt: &dateFmt},
		{
			Font:   &excelize.Font{Bold: true},
			Border: []excelize.Border{{Type: "top", Color: theme.HeaderFill, Style: 2}},
		},
	}
	var s sheetStyles
	targets := []*int{&s.header, &s.body, &s.band, &s.date, &s.dateBand, &s.total}
	for i, d := range defs {
		id, err := f.NewStyle(d)
		if err != nil {
			return sheetStyles{}, err
		}
		*targets[i] = id
	}
	return s, nil
}

// sanitizeSheetName strips characters Excel rejects in sheet names and
// enforces the length limit.
func sanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return -1
		}
		return r
	}, name)
	name = strings.Trim(strings.TrimSpace(name), "'")
	if r := []rune(name); len(r) > maxSheetNameLen {
		name = string(r[:maxSheetNameLen])
	}
	if name == "" {
		return defaultSheetName
	}
	return name
}

func hasNumeric(cols []Column) bool {
	for _, c := range cols {
		if c.Numeric {
			return true
		}
	}
	return false
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}
