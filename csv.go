package tabexport

import (
	"io"
	"strings"
)

// encodeCSV renders rows as comma-separated text. Headers are the raw column
// keys. An empty row set produces no document at all, not even a header.
func encodeCSV(rows []Row, columns []string) string {
	var sb strings.Builder
	// strings.Builder never returns a write error.
	_ = writeCSV(&sb, rows, columns)
	return sb.String()
}

func writeCSV(w io.Writer, rows []Row, columns []string) error {
	if len(rows) == 0 {
		return nil
	}
	cols := Columns(rows, columns...)

	fields := make([]string, len(cols))
	for i, c := range cols {
		fields[i] = c.Key
	}
	if err := writeCSVRow(w, fields, false); err != nil {
		return err
	}

	for _, row := range rows {
		for i, c := range cols {
			v, _ := row.Get(c.Key)
			fields[i] = FormatValue(v, TargetText).(string)
		}
		if err := writeCSVRow(w, fields, true); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVRow(w io.Writer, fields []string, leadingNewline bool) error {
	var sb strings.Builder
	if leadingNewline {
		sb.WriteByte('\n')
	}
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(escapeCSVField(f))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// escapeCSVField quotes a field containing a comma, quote, or line break and
// doubles any embedded quotes. Other fields pass through unchanged, including
// the empty string, so a single-column row with an empty value is a blank
// line. Readers that skip blank lines (encoding/csv among them) drop it.
func escapeCSVField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
