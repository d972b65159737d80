package tabexport

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/mattn/go-runewidth"
)

const (
	ellipsis      = "..."
	cellPad       = 3.0
	titleHeight   = 24.0
	stampHeight   = 14.0
	footerHeight  = 14.0
	noDataMessage = "No data available"
)

type pdfOptions struct {
	colors palette
	print  PrintConfig
	now    time.Time
}

// pageCursor is the page-break state: the page being drawn and the vertical
// offset of the next row on it.
type pageCursor struct {
	pdf    *fpdf.Fpdf
	y      float64
	top    float64
	bottom float64
}

// reserve moves to a fresh page when a block of height h would cross the
// printable bottom, and returns the y at which to draw it.
func (c *pageCursor) reserve(h float64) float64 {
	if c.y+h > c.bottom {
		c.pdf.AddPage()
		c.y = c.top
	}
	y := c.y
	c.y += h
	return y
}

// renderPDF lays rows out on landscape letter pages. At most print.MaxRows
// rows are drawn and a summary line reports how many of the total were shown.
func renderPDF(rows []Row, title string, opts pdfOptions) ([]byte, error) {
	pdf := layoutPDF(rows, title, opts)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, newRenderError(PDF, err)
	}
	return buf.Bytes(), nil
}

func layoutPDF(rows []Row, title string, opts pdfOptions) *fpdf.Fpdf {
	pc := opts.print
	margin := pc.Margin

	pdf := fpdf.New("L", "pt", "Letter", "")
	pdf.SetCompression(pc.Compress)
	pdf.SetCreationDate(opts.now)
	pdf.SetTitle(title, true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetCellMargin(cellPad)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*margin

	pdf.SetFooterFunc(func() {
		pdf.SetXY(margin, pageH-margin-footerHeight+4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(contentW, footerHeight, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	cur := &pageCursor{pdf: pdf, y: margin, top: margin, bottom: pageH - margin - footerHeight}

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(margin, cur.reserve(titleHeight))
	pdf.CellFormat(contentW, titleHeight, fitText(pdf, tr, title, contentW), "", 0, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(margin, cur.reserve(stampHeight))
	pdf.CellFormat(contentW, stampHeight, "Generated: "+opts.now.Format("2006-01-02 15:04:05 MST"), "", 0, "C", false, 0, "")
	cur.y += pc.RowHeight / 2

	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.SetXY(margin, cur.reserve(pc.RowHeight))
		pdf.CellFormat(contentW, pc.RowHeight, noDataMessage, "", 0, "C", false, 0, "")
		return pdf
	}

	cols := Columns(rows)
	colW := contentW / float64(len(cols))
	avail := colW - 2*cellPad

	pal := opts.colors
	pdf.SetDrawColor(pal.border.r, pal.border.g, pal.border.b)

	pdf.SetFont("Helvetica", "B", pc.FontSize)
	pdf.SetFillColor(pal.headerFill.r, pal.headerFill.g, pal.headerFill.b)
	pdf.SetTextColor(pal.headerFont.r, pal.headerFont.g, pal.headerFont.b)
	pdf.SetXY(margin, cur.reserve(pc.RowHeight))
	for _, c := range cols {
		pdf.CellFormat(colW, pc.RowHeight, fitText(pdf, tr, c.Title, avail), "1", 0, "C", true, 0, "")
	}

	shown := min(len(rows), pc.MaxRows)
	pdf.SetFont("Helvetica", "", pc.FontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(pal.bandFill.r, pal.bandFill.g, pal.bandFill.b)
	for i, row := range rows[:shown] {
		pdf.SetXY(margin, cur.reserve(pc.RowHeight))
		for _, c := range cols {
			v, _ := row.Get(c.Key)
			text := FormatValue(v, TargetPrint).(string)
			align := "L"
			if c.Numeric {
				align = "R"
			}
			pdf.CellFormat(colW, pc.RowHeight, fitText(pdf, tr, text, avail), "1", 0, align, i%2 == 0, 0, "")
		}
	}

	cur.y += pc.RowHeight / 2
	pdf.SetFont("Helvetica", "I", pc.FontSize)
	pdf.SetXY(margin, cur.reserve(pc.RowHeight))
	pdf.CellFormat(contentW, pc.RowHeight, fmt.Sprintf("Showing %d of %d records", shown, len(rows)), "", 0, "L", false, 0, "")
	return pdf
}

// fitText translates s for the core fonts and ellipsizes it to fit within
// width points. Text is never wrapped.
func fitText(pdf *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	if pdf.GetStringWidth(tr(s)) <= width {
		return tr(s)
	}
	total := runewidth.StringWidth(s)
	// First display-width budget whose truncation overflows; the budget just
	// below it is the widest that fits.
	k := sort.Search(total+1, func(w int) bool {
		return pdf.GetStringWidth(tr(runewidth.Truncate(s, w, ellipsis))) > width
	})
	if k == 0 {
		return ""
	}
	return tr(runewidth.Truncate(s, k-1, ellipsis))
}
