package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/koustreak/tablescope/internal/backend"
	"github.com/koustreak/tablescope/internal/session"
)

// maxResultRows caps the search results drawn under the count.
const maxResultRows = 20

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("tablescope"))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(a.page.path()))
	b.WriteString("\n\n")

	switch {
	case a.picker != nil:
		b.WriteString(a.renderPicker())
	case a.page.kind == pageTables:
		b.WriteString(a.renderTables())
	case a.page.kind == pageTable:
		b.WriteString(a.renderTable())
	default:
		b.WriteString(a.renderConnect())
	}

	b.WriteString("\n\n")
	b.WriteString(a.renderStatus())
	b.WriteString("\n")
	b.WriteString(a.help.View(a.keys))
	return b.String()
}

func (a *App) renderConnect() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Connect to the database backend"))
	b.WriteString("\n\n")
	if a.connecting {
		b.WriteString(a.spinner.View() + " connecting")
	} else {
		b.WriteString(dimStyle.Render("Press enter to connect"))
	}
	return b.String()
}

func (a *App) renderTables() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Tables"))
	b.WriteString("\n")

	if len(a.tables) == 0 {
		b.WriteString(dimStyle.Render("  No tables configured"))
		return b.String()
	}
	for i, name := range a.tables {
		if i == a.tableCursor {
			b.WriteString(cursorStyle.Render("> " + name))
		} else {
			b.WriteString("  " + name)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) renderTable() string {
	t := a.table
	var b strings.Builder
	b.WriteString(headerStyle.Render(t.name))
	b.WriteString("\n")

	switch {
	case t.loading:
		b.WriteString(a.spinner.View() + " loading columns")
		return b.String()
	case t.err != nil:
		b.WriteString(errorStyle.Render(t.err.Error()))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Press r to retry"))
		return b.String()
	}

	b.WriteString(dimStyle.Render(plural(t.info.RowCount, "row")))
	b.WriteString("\n")
	b.WriteString(renderColumns(t))
	b.WriteString("\n")
	if len(t.info.SampleRows) > 0 {
		b.WriteString(dimStyle.Render("sample rows"))
		b.WriteString("\n")
		b.WriteString(renderRows(t.info.SampleRows, t.tracker))
		b.WriteString("\n")
	}

	column := t.tracker.Column()
	if column == "" {
		column = dimStyle.Render("(none)")
	}
	b.WriteString("column: " + column + "  ")
	if t.inputActive || t.input.Value() != "" {
		b.WriteString(t.input.View())
	} else {
		b.WriteString(dimStyle.Render("press / to search"))
	}
	if a.searching {
		b.WriteString(" " + a.spinner.View())
	}
	if a.loadingFile {
		b.WriteString("\n" + a.spinner.View() + " loading file")
	}

	if t.result != nil {
		b.WriteString("\n\n")
		b.WriteString(renderResult(t.result, t.tracker))
	}
	return b.String()
}

func renderColumns(t *tableView) string {
	rows := make([][]string, 0, len(t.info.Columns))
	for i, c := range t.info.Columns {
		marker := " "
		if i == t.cursor {
			marker = ">"
		}
		rows = append(rows, []string{marker, c.Name, c.DataType, c.KeyType, c.Nullable, c.Default})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers("", "Column", "Type", "Key", "Null", "Default").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if col == 0 {
				return cursorStyle.Padding(0, 1)
			}
			return toneStyle(t.tracker.Tone(row))
		}).
		Render()
}

func renderResult(res *backend.SearchResult, tr *session.Tracker) string {
	var b strings.Builder
	noun := "matches"
	if res.Count == 1 {
		noun = "match"
	}
	b.WriteString(okStyle.Render(fmt.Sprintf("%d %s", res.Count, noun)))

	if len(res.Results) == 0 {
		return b.String()
	}

	rows := res.Results
	if len(rows) > maxResultRows {
		rows = rows[:maxResultRows]
	}
	b.WriteString("\n")
	b.WriteString(renderRows(rows, tr))
	if more := len(res.Results) - len(rows); more > 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("… and %d more", more)))
	}
	return b.String()
}

// renderRows draws record rows, labelled with the column names when they are
// whole records in column order.
func renderRows(rows [][]string, tr *session.Tracker) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Rows(rows...)
	if len(rows[0]) == tr.Len() {
		headers := make([]string, tr.Len())
		for i := range headers {
			headers[i] = tr.Label(i)
		}
		tbl = tbl.Headers(headers...)
	}
	return tbl.Render()
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func (a *App) renderPicker() string {
	p := a.picker
	title := "Select a file"
	if len(p.filter.Extensions) > 0 {
		title = fmt.Sprintf("Select a %s file (%s)", p.filter.Name, strings.Join(p.filter.Extensions, ", "))
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(p.fp.CurrentDirectory))
	b.WriteString("\n\n")
	b.WriteString(p.fp.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter select • h back • esc cancel"))
	return overlayStyle.Render(b.String())
}

func (a *App) renderStatus() string {
	var parts []string
	if a.status != "" {
		if a.statusErr {
			parts = append(parts, errorStyle.Render(a.status))
		} else {
			parts = append(parts, okStyle.Render(a.status))
		}
	}
	if a.lastNotify != "" {
		parts = append(parts, dimStyle.Render("· "+a.lastNotify))
	}
	return strings.Join(parts, " ")
}
