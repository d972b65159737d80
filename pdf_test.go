package tabexport

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPDFOptions(t *testing.T, maxRows int) pdfOptions {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Print.Compress = false
	cfg.Print.MaxRows = maxRows
	colors, err := cfg.Theme.palette()
	require.NoError(t, err)
	return pdfOptions{
		colors: colors,
		print:  cfg.Print,
		now:    time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
	}
}

func manyRows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = NewRow("id", i+1, "file_name", fmt.Sprintf("file-%03d.png", i+1), "public", i%2 == 0)
	}
	return rows
}

func TestRenderPDFTruncationDisclosed(t *testing.T) {
	t.Parallel()
	data, err := renderPDF(manyRows(500), "Uploads", testPDFOptions(t, 30))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, string(data), "30 of 500")
	assert.Contains(t, string(data), "file-030.png")
	assert.NotContains(t, string(data), "file-031.png")
}

func TestRenderPDFAllRowsShown(t *testing.T) {
	t.Parallel()
	data, err := renderPDF(manyRows(3), "Uploads", testPDFOptions(t, 30))
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "Showing 3 of 3 records")
	assert.Contains(t, out, "File Name")
	assert.Contains(t, out, "Yes")
	assert.NotContains(t, out, "(true)")
	assert.Contains(t, out, "Generated: 2026-10-15 09:30:00 UTC")
}

func TestRenderPDFEmpty(t *testing.T) {
	t.Parallel()
	data, err := renderPDF(nil, "Uploads", testPDFOptions(t, 30))
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, noDataMessage)
	assert.Contains(t, out, "Uploads")
	assert.NotContains(t, out, "Showing")
}

func TestLayoutPDFPageBreaks(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		rows      int
		maxRows   int
		wantPages int
	}{
		"empty":         {rows: 0, maxRows: 30, wantPages: 1},
		"fits one page": {rows: 10, maxRows: 30, wantPages: 1},
		"spills":        {rows: 30, maxRows: 30, wantPages: 2},
		"capped":        {rows: 500, maxRows: 30, wantPages: 2},
		"many pages":    {rows: 100, maxRows: 100, wantPages: 4},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			pdf := layoutPDF(manyRows(tt.rows), "Uploads", testPDFOptions(t, tt.maxRows))
			require.NoError(t, pdf.Error())
			assert.Equal(t, tt.wantPages, pdf.PageCount())
		})
	}
}

func TestLayoutPDFLandscapeLetter(t *testing.T) {
	t.Parallel()
	pdf := layoutPDF(nil, "", testPDFOptions(t, 10))
	w, h := pdf.GetPageSize()
	assert.InDelta(t, 792.0, w, 0.01)
	assert.InDelta(t, 612.0, h, 0.01)
}

func TestFitText(t *testing.T) {
	t.Parallel()
	pdf := fpdf.New("L", "pt", "Letter", "")
	pdf.SetFont("Helvetica", "", 9)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	assert.Equal(t, "short", fitText(pdf, tr, "short", 100))

	long := strings.Repeat("abcdefghij", 10)
	got := fitText(pdf, tr, long, 60)
	assert.True(t, strings.HasSuffix(got, ellipsis), "got %q", got)
	assert.LessOrEqual(t, pdf.GetStringWidth(got), 60.0)
	assert.Greater(t, len(got), len(ellipsis))

	assert.Empty(t, fitText(pdf, tr, long, 1))
}

func TestThemePalette(t *testing.T) {
	t.Parallel()
	p, err := DefaultConfig().Theme.palette()
	require.NoError(t, err)
	assert.Equal(t, rgb{r: 0x44, g: 0x72, b: 0xC4}, p.headerFill)
	assert.Equal(t, rgb{r: 0xFF, g: 0xFF, b: 0xFF}, p.headerFont)
	assert.Equal(t, rgb{r: 0xD9, g: 0xD9, b: 0xD9}, p.border)

	theme := DefaultConfig().Theme
	theme.HeaderFill = "blue"
	_, err = theme.palette()
	assert.ErrorContains(t, err, "header_fill")
}
