package tabexport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Format is an export format token.
type Format string

const (
	CSV   Format = "csv"
	Excel Format = "excel"
	PDF   Format = "pdf"

	// Custom is a reserved capability token. Policies may grant it, but no
	// renderer exists for it yet.
	Custom Format = "custom"
)

var formats = []Format{CSV, Excel, PDF, Custom}

// String returns the format token.
func (f Format) String() string { return string(f) }

// ContentType returns the MIME type of payloads in this format.
// Formats without a renderer return the empty string.
func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv; charset=utf-8"
	case Excel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case PDF:
		return "application/pdf"
	default:
		return ""
	}
}

// Extension returns the conventional file extension, without the dot.
// Callers decide whether to use it.
func (f Format) Extension() string {
	switch f {
	case CSV:
		return "csv"
	case Excel:
		return "xlsx"
	case PDF:
		return "pdf"
	default:
		return ""
	}
}

// Formats returns all known format tokens, including reserved ones.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// ParseFormat parses a format token. Matching ignores case and surrounding
// whitespace.
func ParseFormat(s string) (Format, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, f := range formats {
		if string(f) == norm {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Request is a single export call. Rows must already be scoped to one tenant.
type Request struct {
	Tier    PlanTier
	Format  Format
	Rows    []Row
	Columns []string // CSV only; nil means the first row's key order
	Title   string   // sheet name for Excel, document title for PDF
}

// Result is a rendered export payload.
type Result struct {
	ID          string
	Format      Format
	ContentType string
	Extension   string
	Data        []byte
	TotalRows   int
}

// Text returns the payload as a string. Meaningful for CSV results.
func (r *Result) Text() string { return string(r.Data) }

// Exporter authorizes and renders exports. It holds no mutable state and is
// safe for concurrent use.
type Exporter struct {
	policy Policy
	theme  Theme
	colors palette
	print  PrintConfig
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger used for render failures and diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) { e.logger = l }
}

// WithClock sets the time source for the print document timestamp line.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithIDGenerator replaces the export ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(e *Exporter) { e.newID = fn }
}

// New returns an Exporter using cfg. The config is validated first; an invalid
// config wraps ErrPolicy or ErrInvalidConfig.
func New(cfg Config, opts ...Option) (*Exporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	colors, err := cfg.Theme.palette()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	e := &Exporter{
		policy: cfg.Policy,
		theme:  cfg.Theme,
		colors: colors,
		print:  cfg.Print,
		logger: slog.Default(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Policy returns the capability policy the exporter enforces.
func (e *Exporter) Policy() Policy { return e.policy }

// Export authorizes req against the policy and renders the payload.
//
// A denial returns a *DeniedError before any rendering work starts. A format
// the policy grants but no renderer supports returns ErrNotImplemented. The
// context is only checked before rendering begins; callers needing a timeout
// must impose it around the call.
func (e *Exporter) Export(ctx context.Context, req Request) (*Result, error) {
	id := e.newID()
	log := e.logger.With("export_id", id, "format", string(req.Format), "tier", string(req.Tier), "rows", len(req.Rows))

	format, err := ParseFormat(string(req.Format))
	if err != nil {
		log.Warn("rejected export request", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	decision, err := e.policy.Authorize(req.Tier, format)
	if err != nil {
		log.Error("export policy misconfigured", "error", err)
		return nil, err
	}
	if !decision.Allowed {
		log.Debug("export denied", "minimum_tier", string(decision.MinimumTier))
		return nil, decision.Err()
	}

	if len(req.Rows) > 0 && len(req.Rows[0]) == 0 {
		err := fmt.Errorf("%w: first row has no fields", ErrMalformedInput)
		log.Warn("rejected export request", "error", err)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	switch format {
	case CSV:
		data = []byte(encodeCSV(req.Rows, req.Columns))
	case Excel:
		data, err = buildWorkbook(req.Rows, req.Title, e.theme)
	case PDF:
		data, err = renderPDF(req.Rows, req.Title, pdfOptions{
			colors: e.colors,
			print:  e.print,
			now:    e.now(),
		})
	default:
		return nil, fmt.Errorf("%w: format %q", ErrNotImplemented, format)
	}
	if err != nil {
		if errors.Is(err, ErrRendering) {
			log.Error("export rendering failed", "error", err)
		}
		return nil, err
	}

	log.Debug("export rendered", "bytes", len(data))
	return &Result{
		ID:          id,
		Format:      format,
		ContentType: format.ContentType(),
		Extension:   format.Extension(),
		Data:        data,
		TotalRows:   len(req.Rows),
	}, nil
}
