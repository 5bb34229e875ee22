package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/tablescope/internal/errs"
)

const usersPage = `<!DOCTYPE html>
<html>
<head><title>Table Overview</title></head>
<body>
  <h1 id="t-title">users</h1>
  <table>
    <thead><tr><th>Column</th><th>Type</th><th>Key</th><th>Null</th><th>Default</th></tr></thead>
    <tbody>
      <tr class="column-tr"><td>id</td><td>int</td><td>PRI</td><td>NO</td><td></td></tr>
      <tr class="column-tr"><td>name</td><td>varchar</td><td></td><td>YES</td><td>NULL</td></tr>
      <tr class="column-tr zebra"><td> email </td><td>varchar</td><td>UNI</td><td>NO</td><td></td></tr>
    </tbody>
  </table>
  <p>Rows: <span id="t-count"> 2 </span></p>
  <table>
    <tr class="rand-tr"><td>1</td><td>alice</td><td>alice@example.com</td></tr>
    <tr class="rand-tr"><td>2</td><td></td><td>bob@example.com</td></tr>
  </table>
</body>
</html>`

func TestParseTablePage(t *testing.T) {
	info, err := ParseTablePage(strings.NewReader(usersPage))
	require.NoError(t, err)

	assert.Equal(t, "users", info.Name)
	require.Len(t, info.Columns, 3)
	assert.Equal(t, []string{"id", "name", "email"}, info.ColumnNames())

	assert.Equal(t, ColumnInfo{Name: "id", DataType: "int", KeyType: "PRI", Nullable: "NO"}, info.Columns[0])
	assert.True(t, info.Columns[0].IsPrimaryKey())
	assert.False(t, info.Columns[1].IsPrimaryKey())
	assert.Equal(t, "NULL", info.Columns[1].Default)

	assert.Equal(t, 2, info.RowCount)
	assert.Equal(t, [][]string{
		{"1", "alice", "alice@example.com"},
		{"2", "", "bob@example.com"},
	}, info.SampleRows)
}

func TestParseTablePage_ShortRows(t *testing.T) {
	page := `<div id="t-title">item</div><table><tr class="column-tr"><td>item_id</td></tr></table>`

	info, err := ParseTablePage(strings.NewReader(page))
	require.NoError(t, err)

	require.Len(t, info.Columns, 1)
	assert.Equal(t, "item_id", info.Columns[0].Name)
	assert.Empty(t, info.Columns[0].DataType)
}

func TestParseTablePage_NoColumns(t *testing.T) {
	info, err := ParseTablePage(strings.NewReader(`<h1 id="t-title">empty</h1>`))
	require.NoError(t, err)
	assert.Equal(t, "empty", info.Name)
	assert.Empty(t, info.Columns)
	assert.Zero(t, info.RowCount)
	assert.Empty(t, info.SampleRows)
}

func TestParseTablePage_RowCount(t *testing.T) {
	tests := []struct {
		name    string
		count   string
		want    int
		wantErr bool
	}{
		{name: "empty table", count: "0", want: 0},
		{name: "large", count: "104857", want: 104857},
		{name: "not a number", count: "many", wantErr: true},
		{name: "negative", count: "-3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := `<h1 id="t-title">item</h1><span id="t-count">` + tt.count + `</span>`
			info, err := ParseTablePage(strings.NewReader(page))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errs.IsDecode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, info.RowCount)
		})
	}
}

func TestParseTablePage_MissingTitle(t *testing.T) {
	_, err := ParseTablePage(strings.NewReader(`<table><tr class="column-tr"><td>id</td></tr></table>`))
	require.Error(t, err)
	assert.True(t, errs.IsDecode(err))
}
