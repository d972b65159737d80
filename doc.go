// Package tabexport renders tenant-scoped result sets as downloadable
// exports.
//
// Rows are ordered key/value bags of loosely typed scalars. The same row set
// can be exported as delimited text, a spreadsheet, or a paginated print
// document. Which formats a tenant may request depends on its plan tier.
//
// # Entry Point
//
// [Exporter.Export] is the only way to obtain a payload. It checks the
// request against the [Policy] before any rendering happens:
//
//	exp, err := tabexport.New(tabexport.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	res, err := exp.Export(ctx, tabexport.Request{
//		Tier:   tabexport.SmallBusiness,
//		Format: tabexport.Excel,
//		Rows:   rows,
//		Title:  "Uploads",
//	})
//
// # Rows and Values
//
// A [Row] keeps its key order; the first row decides the column set. Values
// are a tagged union of null, bool, number, and text. Use [ValueOf] or
// [NewRow] at the ingestion boundary. [Row] also decodes from a JSON object
// without losing key order.
//
// Whether a column is numeric is decided from the first row only. A column
// whose later rows hold another type keeps that classification.
//
// # Formats
//
//   - [CSV]: raw keys as headers, RFC 4180 style quoting, no trailing
//     newline. An empty row set yields an empty payload.
//   - [Excel]: humanized bold header with auto-filter and frozen top row,
//     banded rows, typed date cells, and a TOTAL row of live SUM formulas for
//     numeric columns.
//   - [PDF]: landscape letter pages, evenly divided columns, ellipsized
//     cells, page breaks, and a capped row count disclosed in a
//     "Showing N of M records" line.
//   - [Custom]: reserved. Policies may grant it; exporting it returns
//     [ErrNotImplemented].
//
// # Errors
//
//   - [ErrPermissionDenied]: returned as a [*DeniedError] carrying the
//     format, the caller's tier, and the minimum tier that unlocks it
//   - [ErrMalformedInput]: unknown format token or a keyless first row
//   - [ErrRendering]: returned as a [*RenderError] when an encoder fails
//   - [ErrNotImplemented]: the format is granted but has no renderer
//   - [ErrPolicy]: the policy grants the format to no tier at all, or
//     names a duplicate or empty tier or an unknown format
//   - [ErrInvalidConfig]: [New] was given a bad theme colour or print layout
package tabexport
