// Package session holds the page-level state machines: connecting to the
// backend, loading CSV files, tracking the selected column and searching it.
//
// Every controller talks to the privileged side only through a bridge.Bridge
// and to the backend only through the narrow interfaces below, which
// *backend.Client satisfies.
package session

import (
	"context"

	"github.com/koustreak/tablescope/internal/backend"
	"github.com/koustreak/tablescope/internal/errs"
)

// Connector opens the backend's database connection.
type Connector interface {
	Connect(ctx context.Context) (*backend.ConnectResult, error)
}

// BulkInserter loads a CSV file into a table.
type BulkInserter interface {
	BulkInsert(ctx context.Context, r backend.BulkInsertRequest) (*backend.BulkInsertResult, error)
}

// Searcher runs a column-scoped search.
type Searcher interface {
	Search(ctx context.Context, r backend.SearchRequest) (*backend.SearchResult, error)
}

var (
	_ Connector    = (*backend.Client)(nil)
	_ BulkInserter = (*backend.Client)(nil)
	_ Searcher     = (*backend.Client)(nil)
)

// Describe turns a failed backend call into text for the user, prefixed by
// action. The backend's own message wins when it sent one.
func Describe(err error, action string) string {
	if msg, ok := backend.MessageOf(err); ok {
		return msg
	}
	switch errs.KindOf(err) {
	case errs.ErrKindTimeout:
		return action + " timed out"
	case errs.ErrKindCancelled:
		return action + " cancelled"
	case errs.ErrKindDecode:
		return action + " failed: unreadable response from backend"
	default:
		return action + " failed: could not reach backend"
	}
}
