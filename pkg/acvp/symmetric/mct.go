package symmetric

import (
	"fmt"

	"github.com/acvp-tools/libacvp-go/pkg/acvp"
)

const (
	outerRounds = 100
	innerRounds = 1000
)

// MCTRound is one outer round's worth of a Monte-Carlo trace: the
// key/iv/plaintext-or-ciphertext that round started from, and the
// ciphertext-or-plaintext it produced after 1000 inner rounds. Both the
// "input" and "output" field of the test's direction are populated,
// matching the resultsArray shape real ACVP servers expect for block
// ciphers (spec.md §6 and §8 scenario 1).
type MCTRound struct {
	Key [TDESKeyLen]byte
	IV  []byte // nil for ECB
	PT  []byte
	CT  []byte
}

// MCTResult is the full 100-round trace for one MCT test case.
type MCTResult struct {
	Rounds []MCTRound
}

// mctState holds the per-test-case scratch buffers the inner loop needs:
// this replaces the original source's global static arrays (spec.md §9)
// with state scoped to one RunMCT call, discarded when it returns.
type mctState struct {
	oldIV []byte
	ptext [innerRounds][]byte
	ctext [innerRounds][]byte
}

func newMCTState() *mctState {
	st := &mctState{oldIV: make([]byte, TDESBlockLen)}
	for i := range st.ptext {
		st.ptext[i] = make([]byte, TDESBlockLen)
		st.ctext[i] = make([]byte, TDESBlockLen)
	}
	return st
}

// RunMCT drives tc through 100 outer x 1000 inner rounds, calling dut
// once per inner round. Any DUT failure aborts the whole run with
// CryptoModuleFail (or CryptoWrapFail for a key-wrap integrity failure);
// no partial MCTResult is returned in that case (spec.md §4.E failure
// semantics).
func RunMCT(dut DUT, tc *SymTC) (*MCTResult, error) {
	bitLen := tc.Cipher.BitLen()
	hasIV := tc.Cipher.HasIV()
	st := newMCTState()

	result := &MCTResult{Rounds: make([]MCTRound, 0, outerRounds)}

	for outer := 0; outer < outerRounds; outer++ {
		round := MCTRound{}
		copy(round.Key[:], tc.Key)
		if hasIV {
			round.IV = append([]byte(nil), tc.IV...)
		}
		// The outer round's recorded "input" pt/ct is whatever tc
		// currently holds: the test vector's values on the first
		// outer round, or the previous round's key-mutated carry-over
		// on every subsequent round.
		roundInputPT := append([]byte(nil), tc.PT...)
		roundInputCT := append([]byte(nil), tc.CT...)
		if tc.Direction == Encrypt {
			round.PT = roundInputPT
		} else {
			round.CT = roundInputCT
		}

		copy(st.oldIV, tc.IV)
		nk := make([]byte, TDESKeyLen)

		for j := 0; j < innerRounds; j++ {
			tc.MCTIndex = j

			preRoundTransition(tc, st, bitLen, j)

			switch dut.Crypto(tc) {
			case CryptoFail:
				return nil, acvp.Errorf(acvp.CryptoModuleFail, "symmetric.RunMCT",
					fmt.Errorf("DUT failure at outer round %d, inner round %d", outer, j))
			case CryptoKeyWrapIntegrityFail:
				return nil, acvp.Errorf(acvp.CryptoWrapFail, "symmetric.RunMCT",
					fmt.Errorf("key-wrap integrity failure at outer round %d, inner round %d", outer, j))
			}

			copy(st.ptext[j], tc.PT)
			copy(st.ctext[j], tc.CT)

			var fed []byte
			if tc.Direction == Encrypt {
				fed = tc.CT
			} else {
				fed = tc.PT
			}
			shiftIn(nk, fed, bitLen)

			postRoundTransition(tc, st, j)
		}

		mutateKey(tc.Key, nk)

		// tc.IV already holds this outer round's final feedback register:
		// postRoundTransition keeps it current after every inner round, for
		// every mode/direction (ctext-chained for CBC/CFB64-encrypt,
		// iv_ret-chained for OFB and CFB1/CFB8-encrypt, xor-chained for the
		// decrypt directions). iv_ret_after mirrors that value per spec.md
		// §4.E step 5 before being carried into the next outer round's iv.
		copy(tc.IVRetAfter, tc.IV)
		copy(tc.IV, tc.IVRetAfter)

		if tc.Cipher == TDESOFB {
			if tc.Direction == Encrypt {
				xorInto(tc.PT, roundInputPT, tc.IVRet)
			} else {
				xorInto(tc.CT, roundInputCT, tc.IVRet)
			}
		}

		if tc.Direction == Encrypt {
			round.CT = append([]byte(nil), tc.CT...)
		} else {
			round.PT = append([]byte(nil), tc.PT...)
		}
		result.Rounds = append(result.Rounds, round)
	}

	return result, nil
}

// preRoundTransition applies the mode-transition rules that must run
// before the DUT call: the ones that differ between inner round 0 (seeded
// from the outer round's pre-loop IV snapshot) and every later round
// (chained off the previous round's recorded output). Modes whose table
// entry is identical for j=0 and j>0 (ECB, CBC-decrypt, CFB-decrypt) are
// feed-forward rules and live in postRoundTransition instead.
func preRoundTransition(tc *SymTC, st *mctState, bitLen, j int) {
	switch tc.Cipher {
	case TDESCBC:
		if tc.Direction == Encrypt {
			if j == 0 {
				copy(tc.PT, st.oldIV)
			} else {
				copy(tc.PT, st.ctext[j-1])
			}
		}
	case TDESCFB64:
		if tc.Direction == Encrypt {
			if j == 0 {
				copy(tc.PT, st.oldIV)
			} else {
				copy(tc.PT, st.ctext[j-1])
			}
		}
	case TDESOFB:
		if tc.Direction == Encrypt {
			if j == 0 {
				copy(tc.PT, st.oldIV)
			} else {
				copy(tc.PT, tc.IVRet)
			}
		} else {
			if j == 0 {
				copy(tc.CT, st.oldIV)
			} else {
				copy(tc.CT, tc.IVRet)
			}
		}
	case TDESCFB1, TDESCFB8:
		if tc.Direction == Encrypt {
			if j == 0 {
				copy(tc.PT, st.oldIV)
			} else {
				copy(tc.PT, tc.IVRet)
			}
		}
	}
	_ = bitLen // kept for signature symmetry with shiftIn; no mode needs it here
}

// postRoundTransition applies the feed-forward rules: identical for j=0
// and j>0, they prepare the buffers the *next* inner round (or the DUT
// itself, for feedback modes) will read. Critically, this is also where
// tc.IV — the register the stateless per-call DUT reads as its seed —
// is advanced for every mode/direction, since nothing else in the loop
// does so.
func postRoundTransition(tc *SymTC, st *mctState, j int) {
	switch tc.Cipher {
	case TDESECB:
		if tc.Direction == Encrypt {
			copy(tc.PT, tc.CT)
		} else {
			copy(tc.CT, tc.PT)
		}
	case TDESCBC:
		if tc.Direction == Encrypt {
			// iv <- ctext[j]: next round's DUT call chains off this
			// round's ciphertext, exactly like real CBC block chaining.
			copy(tc.IV, tc.CT)
		} else {
			copy(tc.CT, st.ptext[j])
			if j > 0 {
				copy(tc.IV, st.ptext[j-1])
			}
		}
	case TDESCFB64:
		if tc.Direction == Encrypt {
			// iv <- ctext[j], same rule as CBC-encrypt.
			copy(tc.IV, tc.CT)
		} else {
			oldCT := append([]byte(nil), tc.CT...)
			xorInto(tc.CT, oldCT, tc.PT)
			xorInto(tc.IV, tc.PT, tc.CT)
		}
	case TDESCFB8, TDESCFB1:
		if tc.Direction == Encrypt {
			// (DUT writes iv_ret): carry it into iv so the next call's
			// shift register starts where this one left off.
			copy(tc.IV, tc.IVRet)
		} else {
			oldCT := append([]byte(nil), tc.CT...)
			xorInto(tc.CT, oldCT, tc.PT)
			xorInto(tc.IV, tc.PT, tc.CT)
		}
	case TDESOFB:
		// (DUT writes iv_ret): both directions chain the same register.
		copy(tc.IV, tc.IVRet)
	}
}

// mutateKey applies the end-of-outer-round key feedback: key[0:8] ^=
// nk[16:24], key[8:16] ^= nk[8:16], key[16:24] ^= nk[0:8], then
// reapplies DES odd parity to every byte (spec.md §4.E step 4).
func mutateKey(key, nk []byte) {
	for i := 0; i < 8; i++ {
		key[i] ^= nk[16+i]
		key[8+i] ^= nk[8+i]
		key[16+i] ^= nk[i]
	}
	fixParity(key)
}

// xorInto sets dst[i] = a[i] ^ b[i] for every byte, sizing to the
// shortest of the three.
func xorInto(dst, a, b []byte) {
	n := len(dst)
	if len(a) < n {
		n = len(a)
	}
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dst[i] = a[i] ^ b[i]
	}
}

// shiftIn left-shifts the 24-byte register nk by bitLen bits, discarding
// the most-significant bitLen bits, and appends the high bitLen bits of
// data at the least-significant end, one bit at a time.
func shiftIn(nk, data []byte, bitLen int) {
	for i := 0; i < bitLen; i++ {
		shiftLeftOneBit(nk, bitAt(data, i))
	}
}

// bitAt returns the i-th bit of data counting from the most significant
// bit of data[0]. For CFB1 (bitLen=1) this is bit 7 of data[0] — the
// convention spec.md §8's testable property fixes (mask 0x80), which the
// data-model section's "low bit" phrasing (§3) contradicts; this module
// follows §8 since it is stated as a hard invariant.
func bitAt(data []byte, i int) byte {
	byteIdx := i / 8
	bitIdx := 7 - (i % 8)
	if byteIdx >= len(data) {
		return 0
	}
	return (data[byteIdx] >> uint(bitIdx)) & 1
}

func shiftLeftOneBit(buf []byte, carryIn byte) {
	carry := carryIn
	for i := len(buf) - 1; i >= 0; i-- {
		next := (buf[i] >> 7) & 1
		buf[i] = (buf[i] << 1) | carry
		carry = next
	}
}
