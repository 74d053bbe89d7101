// Package bmffhasherr defines the error-kind taxonomy shared by every
// package in this module, per the BMFF hash assertion's error handling
// design (bad parameters, malformed assets, hash mismatches, unsupported
// shapes, and I/O/encoding failures).
package bmffhasherr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error at the API boundary. Callers that need to branch
// on failure category should use this package's Is(err, kind) with the Kind
// values below rather than string-matching Error().
type Kind int

const (
	// KindBadParam indicates caller misuse: a remote-hash url, a
	// non-directory output path, a call that expects Merkle data that is
	// not present, and similar.
	KindBadParam Kind = iota
	// KindInvalidAsset indicates a malformed ISOBMFF stream: a scanner
	// failure, a missing stsc/stco/co64, or a truncated sample.
	KindInvalidAsset
	// KindHashMismatch indicates a digest comparison, or any other
	// structural verification check, failed.
	KindHashMismatch
	// KindUnsupportedType indicates a recognized but out-of-scope shape,
	// such as an iloc-addressed (untimed) asset, or an unknown algorithm
	// identifier.
	KindUnsupportedType
	// KindNotImplemented indicates a code path the spec explicitly leaves
	// unimplemented (iloc Merkle hashing).
	KindNotImplemented
	// KindIO indicates an underlying read/write/seek failure.
	KindIO
	// KindAssertionEncoding indicates a CBOR encode/decode failure.
	KindAssertionEncoding
)

func (k Kind) String() string {
	switch k {
	case KindBadParam:
		return "BadParam"
	case KindInvalidAsset:
		return "InvalidAsset"
	case KindHashMismatch:
		return "HashMismatch"
	case KindUnsupportedType:
		return "UnsupportedType"
	case KindNotImplemented:
		return "NotImplemented"
	case KindIO:
		return "Io"
	case KindAssertionEncoding:
		return "AssertionEncoding"
	default:
		return "Unknown"
	}
}

// Error is the boundary error type returned by this module's exported
// functions. It carries both the Kind the caller should branch on and, for
// KindHashMismatch, the human-readable reason called for by the spec
// (e.g. "Fragment not valid", "BMFF inithash mismatch").
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind, chaining err as its cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// HashMismatch is a convenience constructor for the single most common
// boundary error in the verifier.
func HashMismatch(format string, args ...any) *Error {
	return New(KindHashMismatch, format, args...)
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
