package session

import (
	"context"
	"sync/atomic"

	"github.com/koustreak/tablescope/internal/backend"
	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/logger"
)

// SearchOutcome is an accepted search response.
type SearchOutcome struct {
	Seq    uint64
	Result *backend.SearchResult
}

// QueryClient issues column searches. Only the response to the most
// recently issued search is delivered; older ones fail with errs.ErrKindStale.
type QueryClient struct {
	client Searcher
	log    *logger.Logger
	seq    atomic.Uint64
}

// NewQueryClient creates a query client.
func NewQueryClient(client Searcher, log *logger.Logger) *QueryClient {
	if log == nil {
		log = logger.Nop()
	}
	return &QueryClient{client: client, log: log.Named("query")}
}

// Search sends table, column and value unchanged. Callers that need a
// non-empty column check it before calling.
func (q *QueryClient) Search(ctx context.Context, table, column, value string) (*SearchOutcome, error) {
	seq := q.seq.Add(1)
	log := q.log.With().Uint64("seq", seq).Str("table", table).Str("column", column).Logger()
	log.Debug("search")

	res, err := q.client.Search(ctx, backend.SearchRequest{
		Table:       table,
		CompColumn:  column,
		SearchValue: value,
	})

	if latest := q.seq.Load(); latest != seq {
		log.With().Uint64("latest", latest).Logger().Debug("search response superseded")
		return nil, errs.Newf(errs.ErrKindStale, "search %d superseded by %d", seq, latest)
	}
	if err != nil {
		log.WarnWith("search failed", err, nil)
		return nil, err
	}

	log.With().Int("count", res.Count).Logger().Info("search done")
	return &SearchOutcome{Seq: seq, Result: res}, nil
}

// Latest returns the id of the most recently issued search.
func (q *QueryClient) Latest() uint64 {
	return q.seq.Load()
}
