package session

import (
	"context"
	"sync"
	"time"

	"github.com/koustreak/tablescope/internal/backend"
)

type fakeBridge struct {
	mu        sync.Mutex
	notices   []string
	pages     []string
	pickPath  string
	pickOK    bool
	pickErr   error
	pickCalls int
}

func (b *fakeBridge) Notify(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, message)
}

func (b *fakeBridge) Navigate(pagePath string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pages = append(b.pages, pagePath)
}

func (b *fakeBridge) PickFile(context.Context) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pickCalls++
	return b.pickPath, b.pickOK, b.pickErr
}

func (b *fakeBridge) navigations() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.pages...)
}

// manualTimer records scheduled callbacks instead of running them.
type manualTimer struct {
	mu     sync.Mutex
	delays []time.Duration
	funcs  []func()
}

func (m *manualTimer) after(d time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays = append(m.delays, d)
	m.funcs = append(m.funcs, f)
}

func (m *manualTimer) fire() {
	m.mu.Lock()
	funcs := m.funcs
	m.funcs = nil
	m.mu.Unlock()
	for _, f := range funcs {
		f()
	}
}

type connectReply struct {
	res *backend.ConnectResult
	err error
}

type fakeConnector struct {
	mu      sync.Mutex
	replies []connectReply
	calls   int
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeConnector) Connect(ctx context.Context) (*backend.ConnectResult, error) {
	f.mu.Lock()
	f.calls++
	var r connectReply
	if len(f.replies) > 0 {
		r = f.replies[0]
		if len(f.replies) > 1 {
			f.replies = f.replies[1:]
		}
	}
	block, entered := f.block, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.res, r.err
}

func (f *fakeConnector) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeInserter struct {
	mu       sync.Mutex
	requests []backend.BulkInsertRequest
	res      *backend.BulkInsertResult
	err      error
}

func (f *fakeInserter) BulkInsert(_ context.Context, r backend.BulkInsertRequest) (*backend.BulkInsertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r)
	return f.res, f.err
}

type searchCall struct {
	req     backend.SearchRequest
	release chan struct{}
	res     *backend.SearchResult
	err     error
}

// fakeSearcher answers each search once its release channel is closed, so
// tests can deliver responses out of order.
type fakeSearcher struct {
	mu      sync.Mutex
	calls   []*searchCall
	started chan *searchCall
}

func (f *fakeSearcher) Search(_ context.Context, r backend.SearchRequest) (*backend.SearchResult, error) {
	c := &searchCall{req: r, release: make(chan struct{})}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- c
		<-c.release
	} else {
		c.res = &backend.SearchResult{Count: 1}
	}
	return c.res, c.err
}
