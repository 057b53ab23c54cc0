package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintYAML(&buf, map[string]string{"algorithm": "ACVP-TDES-ECB"}))
	assert.Contains(t, buf.String(), "algorithm: ACVP-TDES-ECB")
}
