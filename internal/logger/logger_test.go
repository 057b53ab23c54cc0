package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false
	mu.Unlock()
	reconfigure()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		reconfigure()
	}
	return buf, cleanup
}

func TestLevelFiltering(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("WARN")
	Debug("should be filtered")
	Info("also filtered")
	Warn("warn passes")
	Error("error passes")

	out := buf.String()
	assert.NotContains(t, out, "should be filtered")
	assert.NotContains(t, out, "also filtered")
	assert.Contains(t, out, "warn passes")
	assert.Contains(t, out, "error passes")
}

func TestJSONFormatEmitsStructuredFields(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("DEBUG")
	SetFormat("json")
	defer SetFormat("text")

	Info("vector set fetched", "vs_id", 42)
	assert.Contains(t, buf.String(), `"vs_id":42`)
}

func TestContextFieldsPrependedToLogLine(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("DEBUG")
	ctx := WithContext(context.Background(), &LogContext{VectorSetID: 7, AlgorithmID: "ACVP-TDES-ECB"})

	InfoCtx(ctx, "processing group")
	out := buf.String()
	assert.Contains(t, out, "vs_id=7")
	assert.Contains(t, out, "algorithm=ACVP-TDES-ECB")
}

func TestWithTestCaseClonesAndOverrides(t *testing.T) {
	lc := &LogContext{VectorSetID: 1, AlgorithmID: "ACVP-TDES-CBC"}
	child := lc.WithTestCase(3, 9)

	assert.Equal(t, 1, child.VectorSetID)
	assert.Equal(t, 3, child.TestGroupID)
	assert.Equal(t, 9, child.TestCaseID)
	assert.Equal(t, 0, lc.TestGroupID, "parent must not be mutated")
}

func TestPrintfCompatLayer(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("DEBUG")
	Infof("fetched %d vector sets", 3)
	assert.Contains(t, buf.String(), "fetched 3 vector sets")
}
