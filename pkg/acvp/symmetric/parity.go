package symmetric

import "math/bits"

// parityTable maps every byte value to its DES odd-parity-adjusted form:
// bit 0 is set or cleared so the total number of set bits in the byte is
// odd. Built once at init time rather than hand-transcribed, but still a
// 256-entry lookup as spec.md §4.E calls for.
var parityTable [256]byte

func init() {
	for i := 0; i < 256; i++ {
		b := byte(i) &^ 1
		if bits.OnesCount8(b)%2 == 0 {
			b |= 1
		}
		parityTable[i] = b
	}
}

// fixParity reapplies DES odd parity to every byte of key in place.
func fixParity(key []byte) {
	for i, b := range key {
		key[i] = parityTable[b]
	}
}
