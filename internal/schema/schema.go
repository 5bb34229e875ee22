// Package schema holds the table page model and the parser that extracts it
// from the backend's rendered table page.
package schema

import "context"

// Reader is the interface for loading a table's schema page.
type Reader interface {
	// InspectTable returns the column info rendered on the table's page.
	InspectTable(ctx context.Context, table string) (*TableInfo, error)
}
