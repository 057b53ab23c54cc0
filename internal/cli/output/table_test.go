package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableData(t *testing.T) {
	table := NewTableData("Name", "Age")
	assert.Equal(t, []string{"Name", "Age"}, table.Headers())
	assert.Empty(t, table.Rows())

	table.AddRow("Alice", "30")
	rows := table.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Alice", "30"}, rows[0])
}

func TestPrintTable(t *testing.T) {
	table := NewTableData("Name", "Value")
	table.AddRow("key1", "value1")

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, table))

	output := buf.String()
	assert.Contains(t, output, "NAME")
	assert.Contains(t, output, "VALUE")
	assert.Contains(t, output, "key1")
	assert.Contains(t, output, "value1")
}

func TestSimpleTable(t *testing.T) {
	pairs := [][2]string{
		{"Session", "https://example.org/acvp/v1/sessions/42"},
		{"Status", "in-progress"},
	}

	var buf bytes.Buffer
	require.NoError(t, SimpleTable(&buf, pairs))

	output := buf.String()
	assert.Contains(t, output, "Session")
	assert.Contains(t, output, "in-progress")
}

func TestVectorSetTableRendersRows(t *testing.T) {
	vt := VectorSetTable{Rows: []VectorSetRow{
		{VectorSetID: 101, Algorithm: "ACVP-TDES-ECB", Status: "submitted", TestGroups: 3},
	}}

	assert.Equal(t, []string{"VS ID", "Algorithm", "Status", "Test Groups"}, vt.Headers())

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, vt))
	assert.Contains(t, buf.String(), "ACVP-TDES-ECB")
	assert.Contains(t, buf.String(), "submitted")
}
