// Package hexcodec converts between bytes and the lowercase, unseparated
// hex strings ACVP vector sets use on the wire. Sub-byte algorithms
// (CFB1) need bit-length-aware decoding, since a declared bit length
// doesn't always land on a byte boundary.
package hexcodec

import (
	"encoding/hex"
	"fmt"

	"github.com/acvp-tools/libacvp-go/pkg/acvp"
)

// Encode renders src as lowercase hex with no separators or prefix.
func Encode(src []byte) string {
	return hex.EncodeToString(src)
}

// Decode parses a lowercase (or mixed-case) even-length hex string into
// bytes. Non-hex characters or an odd-length string are InvalidArg.
func Decode(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, acvp.Errorf(acvp.InvalidArg, "hexcodec.Decode", fmt.Errorf("odd-length hex string %q", s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, acvp.Errorf(acvp.InvalidArg, "hexcodec.Decode", err)
	}
	return b, nil
}

// DecodeBits parses a hex string whose payload is bits rather than whole
// bytes (CFB1 pt/ct). bits <= 4 may legally come from an odd-length hex
// string (a single hex digit); anything else still requires even length.
// The returned slice holds every byte s encodes; it is not trimmed or
// padded to (bits+7)/8 bytes.
func DecodeBits(s string, bits int) ([]byte, error) {
	if bits <= 4 {
		if len(s) == 0 {
			return nil, acvp.Errorf(acvp.InvalidArg, "hexcodec.DecodeBits", fmt.Errorf("empty hex string for %d-bit payload", bits))
		}
		// Pad a lone hex digit so encoding/hex can decode it.
		padded := s
		if len(padded)%2 != 0 {
			padded += "0"
		}
		b, err := hex.DecodeString(padded)
		if err != nil {
			return nil, acvp.Errorf(acvp.InvalidArg, "hexcodec.DecodeBits", err)
		}
		return b, nil
	}
	return Decode(s)
}

// ByteLenForBits rounds a bit count up to the enclosing byte count, the
// rule CFB1 callers use to size pt/ct buffers: (bits+7)/8.
func ByteLenForBits(bits int) int {
	return (bits + 7) / 8
}
