package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/tablescope/internal/bridge"
	"github.com/koustreak/tablescope/internal/errs"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		path    string
		want    page
		wantErr func(error) bool
	}{
		{path: "/", want: page{kind: pageConnect}},
		{path: "", want: page{kind: pageConnect}},
		{path: "/tables", want: page{kind: pageTables}},
		{path: "/tables/", want: page{kind: pageTables}},
		{path: "/table-page?table=users", want: page{kind: pageTable, table: "users"}},
		{path: "/table-page?table=nutrient_lu&x=1", want: page{kind: pageTable, table: "nutrient_lu"}},
		{path: "/table-page?table=order%20items", want: page{kind: pageTable, table: "order items"}},
		{path: "/table-page", wantErr: errs.IsInvalidInput},
		{path: "/table-page?table=%20", wantErr: errs.IsInvalidInput},
		{path: "/admin", wantErr: errs.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := parsePage(tt.path)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err), "unexpected kind: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTablePagePath_RoundTrip(t *testing.T) {
	for _, name := range []string{"users", "recipe_item_junc", "a&b", "order items"} {
		p, err := parsePage(TablePagePath(name))
		require.NoError(t, err)
		assert.Equal(t, name, p.table)
		assert.Equal(t, TablePagePath(name), p.path())
	}
}

func TestWindow_Load(t *testing.T) {
	var got []tea.Msg
	w := window{send: func(m tea.Msg) { got = append(got, m) }}

	require.NoError(t, w.Load("/tables"))
	assert.Error(t, w.Load("/nowhere"))

	require.Len(t, got, 1)
	assert.Equal(t, navigateMsg{page: page{kind: pageTables}}, got[0])
}

func TestShell_NavigateThroughWindow(t *testing.T) {
	sent := make(chan tea.Msg, 1)
	shell := bridge.NewShell(nil, nil, bridge.CSVFilter)
	shell.Attach(window{send: func(m tea.Msg) { sent <- m }})

	shell.Navigate("/nowhere") // logged and dropped
	assert.Empty(t, sent)

	shell.Navigate(TablePagePath("users"))
	assert.Equal(t, navigateMsg{page: page{kind: pageTable, table: "users"}}, <-sent)
}

func TestOverlayPicker(t *testing.T) {
	requests := make(chan pickRequest, 1)
	p := overlayPicker{send: func(m tea.Msg) { requests <- m.(pickRequest) }}

	t.Run("answered", func(t *testing.T) {
		done := make(chan string)
		go func() {
			path, err := p.Pick(context.Background(), bridge.CSVFilter)
			assert.NoError(t, err)
			done <- path
		}()

		req := <-requests
		assert.Equal(t, bridge.CSVFilter, req.filter)
		req.reply <- "/data/users.csv"
		assert.Equal(t, "/data/users.csv", <-done)
	})

	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		path, err := p.Pick(ctx, bridge.CSVFilter)
		<-requests
		assert.Empty(t, path)
		assert.True(t, errs.IsCancelled(err))
	})

	t.Run("shell treats cancel as no file", func(t *testing.T) {
		shell := bridge.NewShell(nil, p, bridge.CSVFilter)
		go func() {
			req := <-requests
			req.reply <- ""
		}()

		path, ok, err := shell.PickFile(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, path)
	})
}
