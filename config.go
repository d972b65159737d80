package tabexport

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds everything an Exporter needs. Zero values are not usable; start
// from DefaultConfig or LoadConfig.
type Config struct {
	Policy Policy      `yaml:"policy"`
	Theme  Theme       `yaml:"theme"`
	Print  PrintConfig `yaml:"print"`
}

// Theme holds the colours shared by the spreadsheet and print renderers.
// Colours are "#RRGGBB" hex strings.
type Theme struct {
	HeaderFill  string `yaml:"header_fill"`
	HeaderFont  string `yaml:"header_font"`
	BandFill    string `yaml:"band_fill"`
	BorderColor string `yaml:"border_color"`
	// DateFormat is the spreadsheet number format applied to date cells.
	DateFormat string `yaml:"date_format"`
}

// PrintConfig controls the paginated document layout. Lengths are in points.
type PrintConfig struct {
	// MaxRows caps the number of rows drawn. Rows beyond the cap are left out
	// and the footer reports how many were shown.
	MaxRows   int     `yaml:"max_rows"`
	Margin    float64 `yaml:"margin"`
	RowHeight float64 `yaml:"row_height"`
	FontSize  float64 `yaml:"font_size"`
	Compress  bool    `yaml:"compress"`
}

// DefaultConfig returns the built-in policy, theme, and print layout.
func DefaultConfig() Config {
	return Config{
		Policy: DefaultPolicy(),
		Theme: Theme{
			HeaderFill:  "#4472C4",
			HeaderFont:  "#FFFFFF",
			BandFill:    "#F2F2F2",
			BorderColor: "#D9D9D9",
			DateFormat:  "yyyy-mm-dd hh:mm:ss",
		},
		Print: PrintConfig{
			MaxRows:   50,
			Margin:    36,
			RowHeight: 18,
			FontSize:  9,
			Compress:  true,
		},
	}
}

// LoadConfig reads a YAML document and overlays it on DefaultConfig. A policy
// section, when present, replaces the default policy entirely.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	var doc struct {
		Policy *Policy      `yaml:"policy"`
		Theme  *Theme       `yaml:"theme"`
		Print  *PrintConfig `yaml:"print"`
	}
	doc.Theme = &cfg.Theme
	doc.Print = &cfg.Print

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if doc.Policy != nil {
		cfg.Policy = *doc.Policy
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the policy, theme colours, and print layout. Policy
// problems wrap ErrPolicy; everything else wraps ErrInvalidConfig.
func (c Config) Validate() error {
	if err := c.Policy.Validate(); err != nil {
		return err
	}
	if _, err := c.Theme.palette(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Print.MaxRows <= 0 {
		return fmt.Errorf("%w: print max_rows must be positive, got %d", ErrInvalidConfig, c.Print.MaxRows)
	}
	if c.Print.Margin < 0 || c.Print.RowHeight <= 0 || c.Print.FontSize <= 0 {
		return fmt.Errorf("%w: print margin must be non-negative and row_height, font_size positive", ErrInvalidConfig)
	}
	return nil
}

type rgb struct{ r, g, b int }

// palette is a Theme with its colours resolved for the print renderer.
type palette struct {
	headerFill, headerFont, bandFill, border rgb
}

func (t Theme) palette() (palette, error) {
	var p palette
	for _, c := range []struct {
		name string
		hex  string
		dst  *rgb
	}{
		{"header_fill", t.HeaderFill, &p.headerFill},
		{"header_font", t.HeaderFont, &p.headerFont},
		{"band_fill", t.BandFill, &p.bandFill},
		{"border_color", t.BorderColor, &p.border},
	} {
		col, err := parseHexColor(c.hex)
		if err != nil {
			return palette{}, fmt.Errorf("theme %s: %w", c.name, err)
		}
		*c.dst = col
	}
	return p, nil
}

// parseHexColor parses "#RRGGBB" into its components.
func parseHexColor(s string) (rgb, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return rgb{}, fmt.Errorf("invalid colour %q", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return rgb{}, fmt.Errorf("invalid colour %q", s)
	}
	return rgb{r: int(n >> 16 & 0xFF), g: int(n >> 8 & 0xFF), b: int(n & 0xFF)}, nil
}
