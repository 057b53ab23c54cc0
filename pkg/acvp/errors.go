// Package acvp is the top-level ACVP client library: process context,
// error kinds, and the algorithm dispatcher that routes a fetched vector
// set to the handler registered for its algorithm.
package acvp

import (
	"errors"
	"fmt"
)

// Kind tags every error this library returns. Propagation is fail-fast:
// a handler returns on first error and releases whatever it acquired.
type Kind int

const (
	Success Kind = iota
	NoCtx
	MissingArg
	InvalidArg
	MalformedJson
	MallocFail
	UnsupportedOp
	CryptoModuleFail
	CryptoWrapFail
	TransportFail
	JwtExpired
	JwtInvalid
	JsonErr
	NoData
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "Success"
	case NoCtx:
		return "NoCtx"
	case MissingArg:
		return "MissingArg"
	case InvalidArg:
		return "InvalidArg"
	case MalformedJson:
		return "MalformedJson"
	case MallocFail:
		return "MallocFail"
	case UnsupportedOp:
		return "UnsupportedOp"
	case CryptoModuleFail:
		return "CryptoModuleFail"
	case CryptoWrapFail:
		return "CryptoWrapFail"
	case TransportFail:
		return "TransportFail"
	case JwtExpired:
		return "JwtExpired"
	case JwtInvalid:
		return "JwtInvalid"
	case JsonErr:
		return "JsonErr"
	case NoData:
		return "NoData"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned throughout this module. Op
// names the operation that failed (e.g. "symmetric.Handle",
// "transport.Post") and Err optionally wraps the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an *Error, wrapping err with %w semantics.
func Errorf(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the Kind from err, or Success if err is nil, or
// TransportFail if err is non-nil but not one of ours.
func KindOf(err error) Kind {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return TransportFail
}
