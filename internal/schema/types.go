package schema

import "strings"

// ColumnInfo describes a single column row on a table page.
// Values are kept as the backend rendered them.
type ColumnInfo struct {
	Name     string
	DataType string // varchar, int, decimal, …
	KeyType  string // PRI, UNI, MUL or empty
	Nullable string // YES / NO
	Default  string
}

// IsPrimaryKey reports whether the backend marked the column as primary key.
func (c ColumnInfo) IsPrimaryKey() bool {
	return strings.EqualFold(c.KeyType, "PRI")
}

// TableInfo describes a table and its columns, in page order.
// SampleRows is the backend's random sample of up to 20 rows; it is empty
// when the table has no rows.
type TableInfo struct {
	Name       string
	Columns    []ColumnInfo
	RowCount   int
	SampleRows [][]string
}

// ColumnNames returns the column labels in page order.
func (t *TableInfo) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
