package hexcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"00",
		"ab",
		"0123456789abcdef23456789abcdef0145678923456789ab",
		"8899aabbccddeeff",
	}
	for _, s := range cases {
		b, err := Decode(s)
		require.NoError(t, err)
		assert.Equal(t, s, Encode(b))
	}
}

func TestDecodeRejectsOddLength(t *testing.T) {
	_, err := Decode("abc")
	require.Error(t, err)
}

func TestDecodeRejectsNonHex(t *testing.T) {
	_, err := Decode("zz")
	require.Error(t, err)
}

func TestDecodeBitsCFB1(t *testing.T) {
	// payloadLen=5 bits, hex "F8" -> the engine only cares about bit 7
	// of the single decoded byte; ByteLenForBits(5) == 1.
	b, err := DecodeBits("F8", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, ByteLenForBits(5))
	assert.Equal(t, byte(0xF8), b[0])
}

func TestDecodeBitsSingleDigit(t *testing.T) {
	b, err := DecodeBits("8", 1)
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.Equal(t, byte(0x80), b[0])
}
