package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every validation failure unwraps to exactly one of these, so
// callers can tell forgery (digest, signature) apart from chain-state desync
// (sequence, link) with errors.Is.
var (
	ErrEncoding              = errors.New("unsupported value in canonical encoding")
	ErrMalformedEvent        = errors.New("malformed event")
	ErrDigestMismatch        = errors.New("digest mismatch")
	ErrSequenceGap           = errors.New("sequence gap")
	ErrChainLinkBroken       = errors.New("chain link broken")
	ErrSignatureInvalid      = errors.New("signature invalid")
	ErrPreRotationMismatch   = errors.New("pre-rotation commitment mismatch")
	ErrDualSignatureRequired = errors.New("deactivation requires current and next key signatures")
	ErrChainTerminated       = errors.New("chain is deactivated")
	ErrAuthenticationFailed  = errors.New("message authentication failed")
	ErrMalformedEnvelope     = errors.New("malformed envelope")
)

// MismatchError reports which check failed and the expected vs actual value.
// Values are public data only (digests, sequence numbers, public keys).
type MismatchError struct {
	Kind  error
	Field string
	Want  string
	Got   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%v: %s: want %s, got %s", e.Kind, e.Field, e.Want, e.Got)
}

// Unwrap returns the error kind.
func (e *MismatchError) Unwrap() error { return e.Kind }

// Mismatch builds a MismatchError from any two printable values.
func Mismatch(kind error, field string, want, got any) error {
	return &MismatchError{
		Kind:  kind,
		Field: field,
		Want:  fmt.Sprint(want),
		Got:   fmt.Sprint(got),
	}
}
