package tui

import (
	"context"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/koustreak/tablescope/internal/bridge"
	"github.com/koustreak/tablescope/internal/errs"
)

// Page paths the window can load.
const (
	PathConnect   = "/"
	PathTables    = "/tables"
	PathTablePage = "/table-page"
)

type pageKind int

const (
	pageConnect pageKind = iota
	pageTables
	pageTable
)

type page struct {
	kind  pageKind
	table string
}

// parsePage resolves a page path such as "/table-page?table=users".
func parsePage(pagePath string) (page, error) {
	u, err := url.Parse(pagePath)
	if err != nil {
		return page{}, errs.Wrap(errs.ErrKindInvalidInput, "invalid page path "+pagePath, err)
	}
	switch strings.TrimSuffix(u.Path, "/") {
	case "":
		return page{kind: pageConnect}, nil
	case PathTables:
		return page{kind: pageTables}, nil
	case PathTablePage:
		table := strings.TrimSpace(u.Query().Get("table"))
		if table == "" {
			return page{}, errs.New(errs.ErrKindInvalidInput, "table page requires a table")
		}
		return page{kind: pageTable, table: table}, nil
	default:
		return page{}, errs.Newf(errs.ErrKindNotFound, "page %s not found", u.Path)
	}
}

// TablePagePath returns the path of table's page.
func TablePagePath(table string) string {
	return PathTablePage + "?" + url.Values{"table": {table}}.Encode()
}

// window loads pages into a running program.
type window struct {
	send func(tea.Msg)
}

var _ bridge.Window = window{}

func (w window) Load(pagePath string) error {
	p, err := parsePage(pagePath)
	if err != nil {
		return err
	}
	w.send(navigateMsg{page: p})
	return nil
}

// overlayPicker shows the file picker overlay and waits for the user.
type overlayPicker struct {
	send func(tea.Msg)
}

var _ bridge.Picker = overlayPicker{}

func (p overlayPicker) Pick(ctx context.Context, filter bridge.FileFilter) (string, error) {
	reply := make(chan string, 1)
	p.send(pickRequest{filter: filter, reply: reply})

	select {
	case path := <-reply:
		return path, nil
	case <-ctx.Done():
		return "", errs.Wrap(errs.ErrKindCancelled, "file picker closed", ctx.Err())
	}
}
