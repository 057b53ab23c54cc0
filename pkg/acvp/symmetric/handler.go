// Package symmetric implements the Symmetric Vector-Set Handler
// (spec.md §4.D): parses a symmetric-cipher vector set, drives the DUT
// through each test case (directly for AFT, through the MCT engine for
// MCT), and builds the response document.
package symmetric

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/acvp-tools/libacvp-go/pkg/acvp"
	"github.com/acvp-tools/libacvp-go/pkg/acvp/envelope"
	"github.com/acvp-tools/libacvp-go/pkg/acvp/hexcodec"
)

// Handler adapts a DUT into the acvp.Handler interface the dispatcher
// calls. session is unused (cancellation comes from ctx): a symmetric
// vector set carries everything the handler needs in the request body
// itself, but the parameter is part of the dispatch contract every
// handler implements (spec.md §4.F).
type Handler struct {
	DUT DUT
}

// NewHandler wraps dut for registration with an acvp.Dispatcher.
func NewHandler(dut DUT) *Handler {
	return &Handler{DUT: dut}
}

func (h *Handler) Handle(ctx context.Context, session *acvp.Ctx, vs json.RawMessage) (*envelope.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, acvp.Errorf(acvp.TransportFail, "symmetric.Handler.Handle", err)
	}
	_ = session
	return handleVectorSet(h.DUT, vs)
}

// requestDoc mirrors the vector-set document shape spec.md §3 describes.
type requestDoc struct {
	VectorSetID int             `json:"vsId"`
	Algorithm   string          `json:"algorithm"`
	TestGroups  []requestGroup  `json:"testGroups"`
}

type requestGroup struct {
	TgID      int           `json:"tgId"`
	Direction string        `json:"direction"`
	TestType  string        `json:"testType"`
	Tests     []requestTest `json:"tests"`
}

type requestTest struct {
	TcID       int    `json:"tcId"`
	Key1       string `json:"key1"`
	Key2       string `json:"key2"`
	Key3       string `json:"key3"`
	PT         string `json:"pt,omitempty"`
	CT         string `json:"ct,omitempty"`
	IV         string `json:"iv,omitempty"`
	PayloadLen int    `json:"payloadLen,omitempty"`
}

// buildKey concatenates the three 8-byte key fragments into a 24-byte
// key, placing key2 at byte offset 16 rather than the seemingly-correct
// 8. This is spec.md §4.D.a's verbatim-preserved quirk, not a bug fix —
// see DESIGN.md and spec.md §9 Open Questions before "fixing" this.
func buildKey(key1, key2, key3 string) ([]byte, error) {
	k1, err := hexcodec.Decode(key1)
	if err != nil {
		return nil, acvp.Errorf(acvp.InvalidArg, "symmetric.buildKey", fmt.Errorf("key1: %w", err))
	}
	k2, err := hexcodec.Decode(key2)
	if err != nil {
		return nil, acvp.Errorf(acvp.InvalidArg, "symmetric.buildKey", fmt.Errorf("key2: %w", err))
	}
	k3, err := hexcodec.Decode(key3)
	if err != nil {
		return nil, acvp.Errorf(acvp.InvalidArg, "symmetric.buildKey", fmt.Errorf("key3: %w", err))
	}
	if len(k1) != 8 || len(k2) != 8 || len(k3) != 8 {
		return nil, acvp.Errorf(acvp.InvalidArg, "symmetric.buildKey", fmt.Errorf("key fragments must each be 8 bytes"))
	}

	key := make([]byte, TDESKeyLen)
	copy(key[0:8], k1)
	copy(key[16:24], k2) // offset 16, not 8 — see doc comment above
	// k3 is intentionally not copied: at the spec's stated offset 32 it
	// would run past the 24-byte buffer entirely. Preserved as a no-op
	// rather than silently truncated or panicking; see DESIGN.md.
	_ = k3

	return key, nil
}

func splitKey(key []byte) (key1, key2, key3 string) {
	return hexcodec.Encode(key[0:8]), hexcodec.Encode(key[16:24]), hexcodec.Encode(key[8:16])
}

// handleVectorSet parses one symmetric vector-set document and produces
// its response, calling dut for every test case. Any DUT failure aborts
// the entire vector set (spec.md §4.E failure semantics): the caller
// gets an error, not a partial document.
func handleVectorSet(dut DUT, raw json.RawMessage) (*envelope.Document, error) {
	var doc requestDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, acvp.Errorf(acvp.MalformedJson, "symmetric.Handle", err)
	}

	resp := envelope.New(doc.VectorSetID, doc.Algorithm)
	cipher, err := CipherFromAlgorithm(doc.Algorithm)
	if err != nil {
		return nil, acvp.Errorf(acvp.InvalidArg, "symmetric.Handle", err)
	}

	for _, g := range doc.TestGroups {
		direction, err := DirectionFromString(g.Direction)
		if err != nil {
			return nil, acvp.Errorf(acvp.InvalidArg, "symmetric.Handle", fmt.Errorf("group %d: %w", g.TgID, err))
		}
		testType, err := TestTypeFromString(g.TestType)
		if err != nil {
			return nil, acvp.Errorf(acvp.InvalidArg, "symmetric.Handle", fmt.Errorf("group %d: %w", g.TgID, err))
		}

		respGroup := resp.AddGroup(g.TgID)

		for _, t := range g.Tests {
			if err := handleTest(dut, cipher, direction, testType, t, respGroup); err != nil {
				return nil, err
			}
		}
	}

	return resp, nil
}

func handleTest(dut DUT, cipher Cipher, direction Direction, testType TestType, t requestTest, respGroup *envelope.Group) (err error) {
	key, err := buildKey(t.Key1, t.Key2, t.Key3)
	if err != nil {
		return err
	}

	params := Params{
		TCID:      t.TcID,
		Cipher:    cipher,
		Direction: direction,
		TestType:  testType,
		Key:       key,
	}

	if direction == Encrypt {
		if cipher == TDESCFB1 {
			pt, derr := hexcodec.DecodeBits(t.PT, t.PayloadLen)
			if derr != nil {
				return acvp.Errorf(acvp.InvalidArg, "symmetric.handleTest", derr)
			}
			params.PT = pt
			params.PTLenBits = t.PayloadLen
		} else {
			pt, derr := hexcodec.Decode(t.PT)
			if derr != nil {
				return acvp.Errorf(acvp.InvalidArg, "symmetric.handleTest", derr)
			}
			params.PT = pt
		}
	} else {
		if cipher == TDESCFB1 {
			ct, derr := hexcodec.DecodeBits(t.CT, t.PayloadLen)
			if derr != nil {
				return acvp.Errorf(acvp.InvalidArg, "symmetric.handleTest", derr)
			}
			params.CT = ct
			params.CTLenBits = t.PayloadLen
		} else {
			ct, derr := hexcodec.Decode(t.CT)
			if derr != nil {
				return acvp.Errorf(acvp.InvalidArg, "symmetric.handleTest", derr)
			}
			params.CT = ct
		}
	}

	if cipher.HasIV() {
		if len(t.IV) != 16 {
			return acvp.Errorf(acvp.InvalidArg, "symmetric.handleTest", fmt.Errorf("tcId %d: iv must be 16 hex chars, got %d", t.TcID, len(t.IV)))
		}
		iv, derr := hexcodec.Decode(t.IV)
		if derr != nil {
			return acvp.Errorf(acvp.InvalidArg, "symmetric.handleTest", derr)
		}
		params.IV = iv
	}

	tc := New(params)
	defer Release(tc)

	if testType == MCT {
		result, rerr := RunMCT(dut, tc)
		if rerr != nil {
			return rerr
		}
		respGroup.AddMCT(t.TcID, toEnvelopeRounds(cipher, direction, result))
		return nil
	}

	switch dut.Crypto(tc) {
	case CryptoFail:
		return acvp.Errorf(acvp.CryptoModuleFail, "symmetric.handleTest", fmt.Errorf("tcId %d", t.TcID))
	case CryptoKeyWrapIntegrityFail:
		respGroup.AddTestPassed(t.TcID, false)
		return nil
	}

	if direction == Encrypt {
		n := min(hexcodec.ByteLenForBits(tc.PTLenBits), len(tc.CT))
		respGroup.AddEncrypt(t.TcID, hexcodec.Encode(tc.CT[:n]))
	} else {
		n := min(hexcodec.ByteLenForBits(tc.CTLenBits), len(tc.PT))
		respGroup.AddDecrypt(t.TcID, hexcodec.Encode(tc.PT[:n]))
	}
	return nil
}

func toEnvelopeRounds(cipher Cipher, direction Direction, result *MCTResult) []*envelope.MCTRound {
	rounds := make([]*envelope.MCTRound, 0, len(result.Rounds))
	for _, r := range result.Rounds {
		key1, key2, key3 := splitKey(r.Key[:])
		er := &envelope.MCTRound{Key1: key1, Key2: key2, Key3: key3}
		if cipher.HasIV() {
			er.IV = hexcodec.Encode(r.IV)
		}
		if r.PT != nil {
			er.PT = hexcodec.Encode(r.PT)
		}
		if r.CT != nil {
			er.CT = hexcodec.Encode(r.CT)
		}
		rounds = append(rounds, er)
	}
	return rounds
}
