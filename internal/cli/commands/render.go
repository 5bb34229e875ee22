package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/koustreak/tablescope/internal/backend"
	"github.com/koustreak/tablescope/internal/filestore"
	"github.com/koustreak/tablescope/internal/schema"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderColumns(w io.Writer, info *schema.TableInfo) {
	_, _ = fmt.Fprintf(w, "Table: %s\n", info.Name)
	if len(info.Columns) == 0 {
		_, _ = fmt.Fprintln(w, "(no columns)")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Column", "Type", "Key", "Null", "Default"})
	for i, c := range info.Columns {
		t.AppendRow(table.Row{i + 1, c.Name, c.DataType, c.KeyType, c.Nullable, c.Default})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "Rows: %d\n", info.RowCount)

	if len(info.SampleRows) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "Sample (%d of %d rows):\n", len(info.SampleRows), info.RowCount)
	renderRows(w, info.SampleRows, info.ColumnNames())
}

// renderRows prints record rows. headers label them when they have the same
// width.
func renderRows(w io.Writer, rows [][]string, headers []string) {
	t := newTable(w)
	if len(headers) > 0 && len(headers) == len(rows[0]) {
		row := make(table.Row, len(headers))
		for i, h := range headers {
			row[i] = h
		}
		t.AppendHeader(row)
	}
	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		t.AppendRow(row)
	}
	t.Render()
}

// renderSearch prints the match count and the returned rows. headers label
// the rows when they have the same width.
func renderSearch(w io.Writer, res *backend.SearchResult, headers []string) {
	if res.Message != "" {
		_, _ = fmt.Fprintln(w, res.Message)
	}
	_, _ = fmt.Fprintf(w, "%d matches\n", res.Count)
	if len(res.Results) == 0 {
		return
	}
	renderRows(w, res.Results, headers)
}

func renderObjects(w io.Writer, bucket string, objects []filestore.ObjectInfo, headers map[string][]string) {
	if len(objects) == 0 {
		_, _ = fmt.Fprintf(w, "No CSV objects in %s\n", bucket)
		return
	}

	t := newTable(w)
	hdr := table.Row{"Key", "Size", "Modified"}
	if headers != nil {
		hdr = append(hdr, "Columns")
	}
	t.AppendHeader(hdr)
	for _, o := range objects {
		row := table.Row{o.Key, o.Size, o.LastModified.Format("2006-01-02 15:04")}
		if headers != nil {
			row = append(row, fmt.Sprint(headers[o.Key]))
		}
		t.AppendRow(row)
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d objects in %s)\n", len(objects), bucket)
}
