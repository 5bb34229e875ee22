package backend_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/tablescope/internal/backend"
	"github.com/koustreak/tablescope/internal/backend/backendtest"
	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/schema"
)

func newClient(t *testing.T, srv *backendtest.Server) *backend.Client {
	t.Helper()
	c, err := backend.New(backend.Config{BaseURL: srv.URL, RequestTimeout: 2 * time.Second}, nil)
	require.NoError(t, err)
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost", "://nope"} {
		_, err := backend.New(backend.Config{BaseURL: raw}, nil)
		assert.True(t, errs.IsInvalidInput(err), raw)
	}
}

func TestClient_Connect(t *testing.T) {
	srv := backendtest.New(t)
	c := newClient(t, srv)

	res, err := c.Connect(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Connection Successful!", res.Message)

	reqs := srv.Requests(backendtest.RouteConnect)
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.NotEmpty(t, reqs[0].RequestID)
	assert.Equal(t, "application/json", reqs[0].Header.Get("Accept"))
}

func TestClient_Connect_StatusError(t *testing.T) {
	srv := backendtest.New(t)
	srv.On(backendtest.RouteConnect, backendtest.Reply{
		Status: http.StatusInternalServerError,
		Error:  "Connection Failed: dial tcp 127.0.0.1:3306: connect: connection refused",
	})
	c := newClient(t, srv)

	_, err := c.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsTransport(err))
	assert.Equal(t, http.StatusInternalServerError, backend.StatusOf(err))

	msg, ok := backend.MessageOf(err)
	require.True(t, ok)
	assert.Equal(t, "Connection Failed: dial tcp 127.0.0.1:3306: connect: connection refused", msg)
}

func TestClient_Connect_MalformedJSON(t *testing.T) {
	srv := backendtest.New(t)
	srv.On(backendtest.RouteConnect, backendtest.Reply{Body: "<html>oops</html>"})
	c := newClient(t, srv)

	_, err := c.Connect(context.Background())
	assert.True(t, errs.IsDecode(err))
}

func TestClient_Connect_Unreachable(t *testing.T) {
	srv := backendtest.New(t)
	c := newClient(t, srv)
	srv.Close()

	_, err := c.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsTransport(err))
	assert.Zero(t, backend.StatusOf(err))
}

func TestClient_Timeout(t *testing.T) {
	srv := backendtest.New(t)
	srv.On(backendtest.RouteConnect, backendtest.Reply{
		Delay: time.Second,
		JSON:  map[string]any{"success": true},
	})
	c := newClient(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Connect(ctx)
	assert.True(t, errs.IsTimeout(err), "got %v", err)
}

func TestClient_Cancelled(t *testing.T) {
	srv := backendtest.New(t)
	c := newClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Connect(ctx)
	assert.True(t, errs.IsCancelled(err), "got %v", err)
}

func TestClient_BulkInsert(t *testing.T) {
	srv := backendtest.New(t)
	srv.On(backendtest.RouteBulk, backendtest.Reply{JSON: map[string]any{"message": "Inserted 12 rows into item"}})
	c := newClient(t, srv)

	res, err := c.BulkInsert(context.Background(), backend.BulkInsertRequest{File: "/data/item.csv", Table: "item"})
	require.NoError(t, err)
	assert.Equal(t, "Inserted 12 rows into item", res.Message)

	reqs := srv.Requests(backendtest.RouteBulk)
	require.Len(t, reqs, 1)
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))

	var body map[string]string
	require.NoError(t, reqs[0].Decode(&body))
	assert.Equal(t, map[string]string{"file": "/data/item.csv", "table": "item"}, body)
}

func TestClient_Search(t *testing.T) {
	tests := []struct {
		name    string
		reply   backendtest.Reply
		want    *backend.SearchResult
		errKind errs.ErrKind
	}{
		{
			name: "rows",
			reply: backendtest.Reply{JSON: map[string]any{
				"count":   2,
				"results": [][]string{{"1", "flour"}, {"7", "flour, rye"}},
			}},
			want: &backend.SearchResult{Count: 2, Results: [][]string{{"1", "flour"}, {"7", "flour, rye"}}},
		},
		{
			name:  "zero count",
			reply: backendtest.Reply{JSON: map[string]any{"count": 0}},
			want:  &backend.SearchResult{Count: 0},
		},
		{
			name:  "message",
			reply: backendtest.Reply{JSON: map[string]any{"count": 0, "message": "nothing matched"}},
			want:  &backend.SearchResult{Count: 0, Message: "nothing matched"},
		},
		{
			name:    "missing count",
			reply:   backendtest.Reply{JSON: map[string]any{"results": [][]string{}}},
			errKind: errs.ErrKindDecode,
		},
		{
			name:    "non-integer count",
			reply:   backendtest.Reply{JSON: map[string]any{"count": "three"}},
			errKind: errs.ErrKindDecode,
		},
		{
			name:    "bad request",
			reply:   backendtest.Reply{Status: http.StatusBadRequest, Error: "Could Not Exicute Query"},
			errKind: errs.ErrKindTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := backendtest.New(t)
			srv.On(backendtest.RouteSearch, tt.reply)
			c := newClient(t, srv)

			res, err := c.Search(context.Background(), backend.SearchRequest{
				Table: "item", CompColumn: "name", SearchValue: "flour",
			})
			if tt.want == nil {
				require.Error(t, err)
				assert.Equal(t, tt.errKind, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
		})
	}
}

func TestClient_Search_SendsFieldsUnchanged(t *testing.T) {
	srv := backendtest.New(t)
	c := newClient(t, srv)

	_, err := c.Search(context.Background(), backend.SearchRequest{
		Table: "item", CompColumn: "", SearchValue: "  50% ' OR 1=1 ",
	})
	require.NoError(t, err)

	var body map[string]string
	require.NoError(t, srv.Requests(backendtest.RouteSearch)[0].Decode(&body))
	assert.Equal(t, "", body["compColumn"])
	assert.Equal(t, "  50% ' OR 1=1 ", body["searchValue"])
	assert.Contains(t, body, "compColumn")
}

func TestClient_TablePage(t *testing.T) {
	srv := backendtest.New(t)
	srv.SetTable(schema.TableInfo{
		Name: "nutrient lu",
		Columns: []schema.ColumnInfo{
			{Name: "nutrient_id", DataType: "int", KeyType: "PRI", Nullable: "NO"},
			{Name: "label", DataType: "varchar", Nullable: "YES"},
		},
		RowCount:   41,
		SampleRows: [][]string{{"1", "Protein <g>"}, {"7", "Fat & oil"}},
	})
	c := newClient(t, srv)

	info, err := c.TablePage(context.Background(), "nutrient lu")
	require.NoError(t, err)
	assert.Equal(t, "nutrient lu", info.Name)
	assert.Equal(t, []string{"nutrient_id", "label"}, info.ColumnNames())
	assert.Equal(t, 41, info.RowCount)
	assert.Equal(t, [][]string{{"1", "Protein <g>"}, {"7", "Fat & oil"}}, info.SampleRows)

	reqs := srv.Requests(backendtest.RouteTablePage)
	require.Len(t, reqs, 1)
	assert.Equal(t, "table=nutrient+lu", reqs[0].Query)
}

func TestClient_TablePage_Errors(t *testing.T) {
	srv := backendtest.New(t)
	c := newClient(t, srv)

	_, err := c.TablePage(context.Background(), "")
	assert.True(t, errs.IsInvalidInput(err))

	_, err = c.TablePage(context.Background(), "ghost")
	assert.Equal(t, http.StatusFailedDependency, backend.StatusOf(err))
}

func TestClient_BaseURLWithPath(t *testing.T) {
	srv := backendtest.New(t)
	c, err := backend.New(backend.Config{BaseURL: srv.URL + "/"}, nil)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, c.BaseURL())

	_, err = c.Connect(context.Background())
	require.NoError(t, err)
}
