package symmetric_test

import (
	"testing"

	"github.com/acvp-tools/libacvp-go/internal/refdut"
	"github.com/acvp-tools/libacvp-go/pkg/acvp/symmetric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mctKey is a fixed, already odd-parity TDES key so tests don't need to
// reason about parity fixup.
func mctKey() []byte {
	key := []byte{
		0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF,
		0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF, 0x01,
		0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF, 0x01, 0x23,
	}
	return key
}

var allZeroBlock = make([]byte, symmetric.TDESBlockLen)

// runChainedMCT drives cipher/direction through RunMCT against refdut and
// returns the 100-round trace. This is the regression test for mct.go's
// inner-round IV advance: before the fix, tc.IV was copied from the
// never-populated IVRetAfter at the end of every outer round, resetting it
// to all-zero bytes regardless of the 1000 inner rounds that had just run.
func runChainedMCT(t *testing.T, cipher symmetric.Cipher, direction symmetric.Direction) *symmetric.MCTResult {
	t.Helper()
	dut := refdut.New()

	p := symmetric.Params{
		Cipher:    cipher,
		Direction: direction,
		TestType:  symmetric.MCT,
		Key:       append([]byte(nil), mctKey()...),
		IV:        []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77},
	}
	if direction == symmetric.Encrypt {
		p.PT = []byte{0x89, 0x9A, 0xAB, 0xCC, 0xDD, 0xEE, 0xFF, 0x10}
	} else {
		p.CT = []byte{0x89, 0x9A, 0xAB, 0xCC, 0xDD, 0xEE, 0xFF, 0x10}
	}

	tc := symmetric.New(p)
	defer symmetric.Release(tc)

	result, err := symmetric.RunMCT(dut, tc)
	require.NoError(t, err)
	require.Len(t, result.Rounds, 100)
	return result
}

// assertIVChains checks that the per-round IV snapshot genuinely advances
// across outer rounds instead of collapsing back to all-zero bytes — the
// exact symptom of the reported bug (IVRetAfter was never written, so
// copying it into IV zeroed the register after the very first outer
// round).
func assertIVChains(t *testing.T, result *symmetric.MCTResult) {
	t.Helper()
	assert.NotEqual(t, allZeroBlock, result.Rounds[50].IV, "round 50's iv collapsed to all-zero bytes")
	assert.NotEqual(t, allZeroBlock, result.Rounds[99].IV, "round 99's iv collapsed to all-zero bytes")
	assert.NotEqual(t, result.Rounds[0].IV, result.Rounds[50].IV, "iv never advanced past round 0")
	assert.NotEqual(t, result.Rounds[50].IV, result.Rounds[99].IV, "iv stopped advancing after round 50")
}

func TestRunMCT_CBCEncryptIVChainsAcrossOuterRounds(t *testing.T) {
	assertIVChains(t, runChainedMCT(t, symmetric.TDESCBC, symmetric.Encrypt))
}

func TestRunMCT_CFB64EncryptIVChainsAcrossOuterRounds(t *testing.T) {
	assertIVChains(t, runChainedMCT(t, symmetric.TDESCFB64, symmetric.Encrypt))
}

func TestRunMCT_OFBEncryptIVChainsAcrossOuterRounds(t *testing.T) {
	assertIVChains(t, runChainedMCT(t, symmetric.TDESOFB, symmetric.Encrypt))
}

func TestRunMCT_OFBDecryptIVChainsAcrossOuterRounds(t *testing.T) {
	assertIVChains(t, runChainedMCT(t, symmetric.TDESOFB, symmetric.Decrypt))
}

func TestRunMCT_CFB8EncryptIVChainsAcrossOuterRounds(t *testing.T) {
	assertIVChains(t, runChainedMCT(t, symmetric.TDESCFB8, symmetric.Encrypt))
}

func TestRunMCT_CFB1EncryptIVChainsAcrossOuterRounds(t *testing.T) {
	assertIVChains(t, runChainedMCT(t, symmetric.TDESCFB1, symmetric.Encrypt))
}

// TestRunMCT_CBCEncryptOuterRoundsProduceDistinctCiphertexts guards the
// across-outer-round half of the chain directly: with the key mutating
// every outer round and the iv genuinely carried forward, no two sampled
// rounds should ever produce the same final ciphertext.
func TestRunMCT_CBCEncryptOuterRoundsProduceDistinctCiphertexts(t *testing.T) {
	result := runChainedMCT(t, symmetric.TDESCBC, symmetric.Encrypt)
	assert.NotEqual(t, result.Rounds[0].CT, result.Rounds[50].CT)
	assert.NotEqual(t, result.Rounds[50].CT, result.Rounds[99].CT)
}
