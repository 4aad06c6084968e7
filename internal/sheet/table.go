// Package sheet defines the row-level contract the bot needs from the
// backing tabular store. Implementations bring their own retry and
// throttling behaviour; callers treat every method as blocking I/O.
package sheet

import "context"

// Record is one data row keyed by header name. Values are kept as
// strings, the way the store hands them out.
type Record map[string]string

// Table exposes the five operations the ordering workflow requires.
// Row and column indexes are 1-based and the header occupies row 1,
// so the first data row is row 2.
type Table interface {
	// Records returns all data rows keyed by the header row.
	Records(ctx context.Context) ([]Record, error)

	// Values returns raw rows including the header row.
	Values(ctx context.Context) ([][]string, error)

	// Header returns the header row.
	Header(ctx context.Context) ([]string, error)

	// Append adds a row after the current last row.
	Append(ctx context.Context, row []string) error

	// UpdateCell overwrites a single cell.
	UpdateCell(ctx context.Context, row, col int, value string) error
}
