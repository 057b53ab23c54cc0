package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintJSONIndents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]int{"vsId": 101}))
	assert.Contains(t, buf.String(), "  \"vsId\"")
}

func TestPrintJSONCompactHasNoIndent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSONCompact(&buf, map[string]int{"vsId": 101}))
	assert.NotContains(t, buf.String(), "  \"vsId\"")
}
