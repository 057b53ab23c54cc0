// Package refdut is a reference Triple-DES implementation wired into
// the symmetric handler only so `acvp-client run` has something to
// drive end to end. The DUT crypto implementation itself is explicitly
// out of scope for this module (spec.md OVERVIEW) — a real deployment
// replaces this package with whatever module is actually under
// validation. This one exists purely to exercise the dispatcher, the
// MCT engine, and the transport/auth loop against a live server.
package refdut

import (
	"crypto/cipher"
	"crypto/des"

	"github.com/acvp-tools/libacvp-go/pkg/acvp/symmetric"
)

// DUT implements symmetric.DUT over Go's standard-library DES/3DES
// block cipher. TDES-KW is not implemented (see DESIGN.md) and always
// reports CryptoFail.
type DUT struct{}

// New returns a ready-to-use reference DUT.
func New() *DUT { return &DUT{} }

func (DUT) Crypto(tc *symmetric.SymTC) symmetric.CryptoResult {
	block, err := des.NewTripleDESCipher(tc.Key)
	if err != nil {
		return symmetric.CryptoFail
	}

	switch tc.Cipher {
	case symmetric.TDESECB:
		return cryptECB(block, tc)
	case symmetric.TDESCBC:
		return cryptCBC(block, tc)
	case symmetric.TDESOFB:
		return cryptOFB(block, tc)
	case symmetric.TDESCFB64:
		return cryptCFB64(block, tc)
	case symmetric.TDESCFB8:
		return cryptCFB8(block, tc)
	case symmetric.TDESCFB1:
		return cryptCFB1(block, tc)
	case symmetric.TDESKW:
		return symmetric.CryptoFail
	default:
		return symmetric.CryptoFail
	}
}

func cryptECB(block cipher.Block, tc *symmetric.SymTC) symmetric.CryptoResult {
	bs := block.BlockSize()
	if tc.Direction == symmetric.Encrypt {
		if len(tc.PT) < bs {
			return symmetric.CryptoFail
		}
		block.Encrypt(tc.CT, tc.PT[:bs])
	} else {
		if len(tc.CT) < bs {
			return symmetric.CryptoFail
		}
		block.Decrypt(tc.PT, tc.CT[:bs])
	}
	return symmetric.CryptoOK
}

func cryptCBC(block cipher.Block, tc *symmetric.SymTC) symmetric.CryptoResult {
	bs := block.BlockSize()
	if len(tc.IV) < bs {
		return symmetric.CryptoFail
	}
	if tc.Direction == symmetric.Encrypt {
		mode := cipher.NewCBCEncrypter(block, tc.IV[:bs])
		mode.CryptBlocks(tc.CT, tc.PT[:bs])
		copy(tc.IVRet, tc.CT[:bs])
	} else {
		mode := cipher.NewCBCDecrypter(block, tc.IV[:bs])
		mode.CryptBlocks(tc.PT, tc.CT[:bs])
		copy(tc.IVRet, tc.CT[:bs])
	}
	return symmetric.CryptoOK
}

func cryptOFB(block cipher.Block, tc *symmetric.SymTC) symmetric.CryptoResult {
	bs := block.BlockSize()
	if len(tc.IV) < bs {
		return symmetric.CryptoFail
	}
	stream := cipher.NewOFB(block, tc.IV[:bs])
	if tc.Direction == symmetric.Encrypt {
		stream.XORKeyStream(tc.CT, tc.PT[:bs])
	} else {
		stream.XORKeyStream(tc.PT, tc.CT[:bs])
	}
	var seed [8]byte
	block.Encrypt(seed[:], tc.IV[:bs])
	copy(tc.IVRet, seed[:])
	return symmetric.CryptoOK
}

func cryptCFB64(block cipher.Block, tc *symmetric.SymTC) symmetric.CryptoResult {
	bs := block.BlockSize()
	if len(tc.IV) < bs {
		return symmetric.CryptoFail
	}
	if tc.Direction == symmetric.Encrypt {
		stream := cipher.NewCFBEncrypter(block, tc.IV[:bs])
		stream.XORKeyStream(tc.CT, tc.PT[:bs])
		copy(tc.IVRet, tc.CT[:bs])
	} else {
		stream := cipher.NewCFBDecrypter(block, tc.IV[:bs])
		stream.XORKeyStream(tc.PT, tc.CT[:bs])
		copy(tc.IVRet, tc.CT[:bs])
	}
	return symmetric.CryptoOK
}

// cryptCFB8 implements 8-bit CFB by hand: stdlib's CFB mode is
// full-block feedback only, so the shift register is maintained
// one byte at a time here.
func cryptCFB8(block cipher.Block, tc *symmetric.SymTC) symmetric.CryptoResult {
	bs := block.BlockSize()
	if len(tc.IV) < bs {
		return symmetric.CryptoFail
	}
	shift := make([]byte, bs)
	copy(shift, tc.IV[:bs])
	out := make([]byte, bs)

	in := tc.PT
	dst := tc.CT
	if tc.Direction == symmetric.Decrypt {
		in = tc.CT
		dst = tc.PT
	}
	if len(in) < 1 {
		return symmetric.CryptoFail
	}

	block.Encrypt(out, shift)
	o := out[0] ^ in[0]
	dst[0] = o

	feed := o
	if tc.Direction == symmetric.Decrypt {
		feed = in[0]
	}
	copy(shift, shift[1:])
	shift[bs-1] = feed
	copy(tc.IVRet, shift)
	return symmetric.CryptoOK
}

// cryptCFB1 implements 1-bit CFB, operating on the single most
// significant bit of the first input byte, matching the CFB1
// convention the symmetric handler decodes payloadLen against.
func cryptCFB1(block cipher.Block, tc *symmetric.SymTC) symmetric.CryptoResult {
	bs := block.BlockSize()
	if len(tc.IV) < bs {
		return symmetric.CryptoFail
	}
	shift := make([]byte, bs)
	copy(shift, tc.IV[:bs])
	out := make([]byte, bs)

	in := tc.PT
	dst := tc.CT
	if tc.Direction == symmetric.Decrypt {
		in = tc.CT
		dst = tc.PT
	}
	if len(in) < 1 {
		return symmetric.CryptoFail
	}

	block.Encrypt(out, shift)
	inBit := (in[0] >> 7) & 1
	outBit := ((out[0] >> 7) & 1) ^ inBit
	dst[0] = outBit << 7

	feedBit := outBit
	if tc.Direction == symmetric.Decrypt {
		feedBit = inBit
	}
	shiftLeftOneBit(shift, feedBit)
	copy(tc.IVRet, shift)
	return symmetric.CryptoOK
}

func shiftLeftOneBit(shift []byte, feedBit byte) {
	carry := feedBit
	for i := len(shift) - 1; i >= 0; i-- {
		nextCarry := (shift[i] >> 7) & 1
		shift[i] = (shift[i] << 1) | carry
		carry = nextCarry
	}
}
