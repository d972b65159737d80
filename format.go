package tabexport

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Target selects the type system a value is formatted for.
type Target int

const (
	TargetText  Target = iota // delimited text
	TargetSheet               // spreadsheet cell
	TargetPrint               // print document cell
)

var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// Layouts tried, in order, when materialising a date-like string as a date.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
}

// IsDateLike reports whether s starts with an ISO year-month-day prefix.
func IsDateLike(s string) bool {
	return isoDatePrefix.MatchString(s)
}

// FormatValue normalises v for display in target. It never fails.
//
// Text and print targets always yield a string. The sheet target yields a
// float64 for numbers, a time.Time for date-like strings that parse, and a
// string otherwise. Date-like strings are only reinterpreted for the sheet
// target; elsewhere they pass through unchanged.
func FormatValue(v Value, target Target) any {
	switch v.Kind() {
	case KindNull:
		return ""
	case KindBool:
		return v.String()
	case KindNumber:
		if target == TargetSheet {
			return v.Float()
		}
		return v.String()
	}

	s := v.String()
	if target == TargetSheet && IsDateLike(s) {
		if t, ok := parseDate(s); ok {
			return t
		}
	}
	return s
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Titleize turns a field key into a column title: "file_size_bytes" becomes
// "File Size Bytes". Only the first rune of each segment is changed.
func Titleize(key string) string {
	parts := strings.Split(key, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(p)
		parts[i] = string(unicode.ToUpper(r)) + p[size:]
	}
	return strings.Join(parts, " ")
}

// Column describes one exported column.
type Column struct {
	Key     string
	Title   string
	Numeric bool
}

// Columns derives the column set for rows. When explicit keys are given they
// are used in order; otherwise the first row's keys are. Numeric is decided
// by the first row's value alone, so a column whose later rows change type
// keeps the first row's classification.
func Columns(rows []Row, explicit ...string) []Column {
	keys := explicit
	if len(keys) == 0 {
		if len(rows) == 0 {
			return nil
		}
		keys = rows[0].Keys()
	}

	cols := make([]Column, len(keys))
	for i, k := range keys {
		cols[i] = Column{Key: k, Title: Titleize(k)}
		if len(rows) > 0 {
			v, _ := rows[0].Get(k)
			cols[i].Numeric = v.Kind() == KindNumber
		}
	}
	return cols
}
