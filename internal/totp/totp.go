// Package totp generates the RFC 6238 time-based one-time password ACVP
// uses as a session's login credential: the server issues a base64
// seed at account creation, and every login call sends the current
// 30-second code derived from it instead of a static password.
//
// No TOTP library appears anywhere in the example corpus, so this is a
// direct RFC 6238/4226 implementation on crypto/hmac and crypto/sha256
// rather than an invented dependency — see DESIGN.md.
package totp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"
)

const (
	stepSeconds = 30
	digits      = 8
)

// Generate returns the current TOTP code for seed, a base64-encoded
// shared secret as ACVP issues it.
func Generate(seed string) (string, error) {
	return generateAt(seed, time.Now())
}

func generateAt(seed string, at time.Time) (string, error) {
	key, err := decodeSeed(seed)
	if err != nil {
		return "", fmt.Errorf("totp: decode seed: %w", err)
	}

	counter := uint64(at.Unix()) / stepSeconds
	var counterBytes [8]byte
	binary.BigEndian.PutUint64(counterBytes[:], counter)

	mac := hmac.New(sha256.New, key)
	mac.Write(counterBytes[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	truncated := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	code := truncated % pow10(digits)
	return fmt.Sprintf("%0*d", digits, code), nil
}

// decodeSeed accepts either standard base64 (as ACVP issues it) or
// base32 (the more common TOTP-seed encoding elsewhere), trying base64
// first since that's what the server actually sends.
func decodeSeed(seed string) ([]byte, error) {
	if key, err := base64.StdEncoding.DecodeString(seed); err == nil {
		return key, nil
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(seed)
}

func pow10(n int) uint32 {
	v := uint32(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
