package schema

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/koustreak/tablescope/internal/errs"
)

const (
	titleID        = "t-title"
	rowCountID     = "t-count"
	columnRowClass = "column-tr"
	sampleRowClass = "rand-tr"
)

// ParseTablePage extracts the table name, column rows, row count and sample
// rows from a table page.
//
// The page carries the table name in the element with id "t-title" and one
// <tr class="column-tr"> per column whose cells are, in order: name, data
// type, key type, nullable, default. Missing trailing cells are left empty.
// The row count is the integer text of the element with id "t-count" (zero
// when absent) and each <tr class="rand-tr"> is one sample row.
func ParseTablePage(r io.Reader) (*TableInfo, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindDecode, "failed to parse table page", err)
	}

	info := &TableInfo{}
	titleFound := false
	countText := ""

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch id := attr(n, "id"); {
			case !titleFound && id == titleID:
				info.Name = strings.TrimSpace(textOf(n))
				titleFound = true
			case countText == "" && id == rowCountID:
				countText = strings.TrimSpace(textOf(n))
			}
			if n.DataAtom == atom.Tr {
				switch {
				case hasClass(n, columnRowClass):
					info.Columns = append(info.Columns, columnFromRow(n))
					return
				case hasClass(n, sampleRowClass):
					info.SampleRows = append(info.SampleRows, cellsOf(n))
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if !titleFound || info.Name == "" {
		return nil, errs.New(errs.ErrKindDecode, "table page has no table title")
	}
	if countText != "" {
		n, err := strconv.Atoi(countText)
		if err != nil || n < 0 {
			return nil, errs.Newf(errs.ErrKindDecode, "table page row count %q is not a count", countText)
		}
		info.RowCount = n
	}
	return info, nil
}

func columnFromRow(tr *html.Node) ColumnInfo {
	cells := cellsOf(tr)

	cell := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}

	return ColumnInfo{
		Name:     cell(0),
		DataType: cell(1),
		KeyType:  cell(2),
		Nullable: cell(3),
		Default:  cell(4),
	}
}

// --- node helpers ---

// cellsOf returns the trimmed text of the td/th children of tr.
func cellsOf(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			cells = append(cells, strings.TrimSpace(textOf(c)))
		}
	}
	return cells
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}
