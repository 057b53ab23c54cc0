package useragent

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestBuildHasFiveSemicolonSeparatedFields(t *testing.T) {
	ua := Build(discardLogger())
	fields := strings.Split(ua, ";")
	assert.Len(t, fields, 5)
	assert.True(t, strings.HasPrefix(fields[0], "libacvp/"))
}

func TestHarvestFieldPrefersOverride(t *testing.T) {
	value := harvestField(discardLogger(), "osname", maxOSName, "custom-os", "detected-os")
	assert.Equal(t, "custom-os", value)
}

func TestHarvestFieldDropsOverCapValue(t *testing.T) {
	long := strings.Repeat("x", maxArch+1)
	value := harvestField(discardLogger(), "arch", maxArch, long, "")
	assert.Equal(t, "unknown", value)
}

func TestSanitizeStripsDelimiters(t *testing.T) {
	assert.Equal(t, "foo_bar_baz", sanitize("foo;bar/baz"))
}
