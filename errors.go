package tabexport

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrPermissionDenied  = errors.New("export format not permitted for plan tier")
	ErrMalformedInput    = errors.New("malformed export input")
	ErrRendering         = errors.New("export rendering failed")
	ErrNotImplemented    = errors.New("export format not implemented")
	ErrPolicy            = errors.New("invalid export policy")
	ErrInvalidConfig     = errors.New("invalid export config")
)

// DeniedError reports a format the caller's tier may not export, together
// with the cheapest tier that would allow it. All three fields are always set.
type DeniedError struct {
	Format      Format
	Tier        PlanTier
	MinimumTier PlanTier
}

// Error implements the error interface.
func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s: format %q requires plan %q (current %q)", ErrPermissionDenied, e.Format, e.MinimumTier, e.Tier)
}

// Is reports whether target is ErrPermissionDenied.
func (e *DeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// RenderError wraps a failure from an underlying encoder.
type RenderError struct {
	Format Format
	Err    error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("%s [format=%s]: %v", ErrRendering, e.Format, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RenderError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRendering.
func (e *RenderError) Is(target error) bool {
	return target == ErrRendering
}

func newRenderError(f Format, err error) *RenderError {
	return &RenderError{Format: f, Err: err}
}
