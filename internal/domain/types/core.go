package types

import (
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
)

// DigestSize is the length of every content digest, commitment and AID.
const DigestSize = 32

// Digest is a 32-byte BLAKE3 content digest.
type Digest [DigestSize]byte

// Slice returns the digest as a []byte.
func (d Digest) Slice() []byte { return d[:] }

// IsZero reports whether the digest is unset.
func (d Digest) IsZero() bool { return d == Digest{} }

// String returns the lowercase hex form.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// DigestFromBytes copies b into a Digest.
func DigestFromBytes(b []byte) (Digest, error) {
	var out Digest
	if len(b) != DigestSize {
		return out, fmt.Errorf("digest: want %d bytes, got %d", DigestSize, len(b))
	}
	copy(out[:], b)
	return out, nil
}

// AID is a self-certifying identifier: the digest of its own inception content.
type AID [DigestSize]byte

// Slice returns the identifier as a []byte.
func (a AID) Slice() []byte { return a[:] }

// IsZero reports whether the identifier is unset.
func (a AID) IsZero() bool { return a == AID{} }

// String returns the base58 text form used on the command line and in logs.
func (a AID) String() string { return base58.Encode(a[:]) }

// ParseAID decodes the base58 text form produced by String.
func ParseAID(s string) (AID, error) {
	var out AID
	raw, err := base58.Decode(s)
	if err != nil {
		return out, fmt.Errorf("parse aid %q: %w", s, err)
	}
	if len(raw) != DigestSize {
		return out, fmt.Errorf("parse aid %q: want %d bytes, got %d", s, DigestSize, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// Fingerprint is a short identifier for keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }
