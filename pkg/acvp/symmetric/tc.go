package symmetric

import "sync"

const (
	// TDESKeyLen is the fixed 3-key Triple-DES key size. The 2-key
	// variant is not implemented here (spec.md notes it was #if-0'd
	// out of the original source; see DESIGN.md).
	TDESKeyLen = 24
	// TDESBlockLen is the TDES block size in bytes (64 bits).
	TDESBlockLen = 8
)

// SymTC is one symmetric test case in flight: the mutable buffers a
// handler and the MCT engine read and write for a single tcId. Buffer
// capacities are the compile-time maxima above; the *LenBits fields are
// authoritative for how much of each buffer is meaningful.
type SymTC struct {
	TCID      int
	Cipher    Cipher
	Direction Direction
	TestType  TestType

	Key        []byte // always TDESKeyLen
	PT         []byte
	CT         []byte
	IV         []byte // empty/unused for ECB
	IVRet      []byte
	IVRetAfter []byte

	// PTLenBits/CTLenBits are bit counts in every mode: CFB1 takes the
	// request's payloadLen, other modes the byte length x8 (spec.md §3).
	PTLenBits int
	CTLenBits int

	// MCTIndex is the 0-based inner-round counter; a DUT reads it to
	// distinguish "first round" from subsequent rounds.
	MCTIndex int
}

var pool = sync.Pool{
	New: func() any {
		return &SymTC{
			Key:        make([]byte, TDESKeyLen),
			PT:         make([]byte, TDESBlockLen),
			CT:         make([]byte, TDESBlockLen),
			IV:         make([]byte, TDESBlockLen),
			IVRet:      make([]byte, TDESBlockLen),
			IVRetAfter: make([]byte, TDESBlockLen),
		}
	},
}

// Params carries what a vector-set test supplies to build a SymTC.
type Params struct {
	TCID      int
	Cipher    Cipher
	Direction Direction
	TestType  TestType
	Key       []byte
	PT        []byte
	CT        []byte
	IV        []byte
	// PTLenBits/CTLenBits: explicit bit length (CFB1 payloadLen). Zero
	// means "derive from the byte slice length x8".
	PTLenBits int
	CTLenBits int
}

// New acquires a SymTC from the pool and populates it from params. Every
// caller must arrange for Release to run on every exit path, including
// failures — this is a scoped acquisition, not a bare allocation.
func New(p Params) *SymTC {
	tc := pool.Get().(*SymTC)
	tc.TCID = p.TCID
	tc.Cipher = p.Cipher
	tc.Direction = p.Direction
	tc.TestType = p.TestType
	tc.MCTIndex = 0

	fill(tc.Key, p.Key)
	fill(tc.PT, p.PT)
	fill(tc.CT, p.CT)
	fill(tc.IV, p.IV)
	zero(tc.IVRet)
	zero(tc.IVRetAfter)

	tc.PTLenBits = p.PTLenBits
	if tc.PTLenBits == 0 && len(p.PT) > 0 {
		tc.PTLenBits = len(p.PT) * 8
	}
	tc.CTLenBits = p.CTLenBits
	if tc.CTLenBits == 0 && len(p.CT) > 0 {
		tc.CTLenBits = len(p.CT) * 8
	}

	return tc
}

// Release zeroes every buffer and returns tc to the pool. Safe to call
// more than once is not guaranteed — callers defer it exactly once.
func Release(tc *SymTC) {
	zero(tc.Key)
	zero(tc.PT)
	zero(tc.CT)
	zero(tc.IV)
	zero(tc.IVRet)
	zero(tc.IVRetAfter)
	pool.Put(tc)
}

func fill(dst, src []byte) {
	n := copy(dst, src)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
