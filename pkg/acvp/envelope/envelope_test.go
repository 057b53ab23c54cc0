package envelope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAFTEncrypt(t *testing.T) {
	doc := New(42, "ACVP-TDES-ECB")
	g := doc.AddGroup(1)
	g.AddEncrypt(7, "8899aabbccddeeff")

	data, err := doc.Marshal()
	require.NoError(t, err)

	var round map[string]any
	require.NoError(t, json.Unmarshal(data, &round))
	assert.EqualValues(t, 42, round["vsId"])
	assert.Equal(t, "ACVP-TDES-ECB", round["algorithm"])
}

func TestBuildTestPassed(t *testing.T) {
	doc := New(1, "ACVP-TDES-KW")
	g := doc.AddGroup(1)
	g.AddTestPassed(3, false)

	data, err := doc.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"testPassed":false`)
}

func TestBuildMCT(t *testing.T) {
	doc := New(2, "ACVP-TDES-CBC")
	g := doc.AddGroup(1)
	g.AddMCT(9, []*MCTRound{
		{Key1: "0123456789abcdef", Key2: "23456789abcdef01", Key3: "456789ab23456789", IV: "0011223344556677", PT: "8899aabbccddeeff", CT: "ffffffffffffffff"},
	})

	data, err := doc.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"resultsArray"`)
}

func TestSchemaHasExpectedProperties(t *testing.T) {
	schema := Schema()
	require.NotNil(t, schema.Properties)
	_, ok := schema.Properties.Get("vsId")
	assert.True(t, ok)
	_, ok = schema.Properties.Get("testGroups")
	assert.True(t, ok)
}
