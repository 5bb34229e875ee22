package session

import "github.com/koustreak/tablescope/internal/errs"

// Tone is the background of a column row.
type Tone int

const (
	ToneBase     Tone = iota // even rows
	ToneStripe               // odd rows
	ToneSelected             // the marked row
)

// Tracker holds the single selected row of a table page's column list.
// It belongs to one page and is not safe for concurrent use.
type Tracker struct {
	labels   []string
	selected int
}

// NewTracker tracks selection over labels, in display order.
func NewTracker(labels []string) *Tracker {
	return &Tracker{
		labels:   append([]string(nil), labels...),
		selected: -1,
	}
}

// Len returns the number of rows.
func (t *Tracker) Len() int {
	return len(t.labels)
}

// Label returns the label of row i, or "" when out of range.
func (t *Tracker) Label(i int) string {
	if i < 0 || i >= len(t.labels) {
		return ""
	}
	return t.labels[i]
}

// Select marks row i, unmarking the previous one. Selecting the marked row
// again changes nothing. An out-of-range index leaves the state untouched.
func (t *Tracker) Select(i int) error {
	if i < 0 || i >= len(t.labels) {
		return errs.Newf(errs.ErrKindInvalidInput, "row %d out of range [0,%d)", i, len(t.labels))
	}
	t.selected = i
	return nil
}

// Selected returns the marked row.
func (t *Tracker) Selected() (int, bool) {
	return t.selected, t.selected >= 0
}

// Column returns the label of the marked row, or "" if none was ever selected.
func (t *Tracker) Column() string {
	return t.Label(t.selected)
}

// Tone returns the background for row i.
func (t *Tracker) Tone(i int) Tone {
	switch {
	case i == t.selected:
		return ToneSelected
	case i%2 == 1:
		return ToneStripe
	default:
		return ToneBase
	}
}
