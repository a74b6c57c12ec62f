package types

import (
	"crypto/ed25519"
	"fmt"
)

// X25519Public is a Curve25519 public key.
type X25519Public [32]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// X25519Private is a Curve25519 private key.
type X25519Private [32]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// Ed25519Public is an Ed25519 signing public key.
type Ed25519Public [32]byte

// Slice returns the key as a []byte.
func (p Ed25519Public) Slice() []byte { return p[:] }

// IsZero reports whether the key is unset.
func (p Ed25519Public) IsZero() bool { return p == Ed25519Public{} }

// Ed25519Private is an Ed25519 signing private key (ed25519.PrivateKey layout).
type Ed25519Private [64]byte

// Slice returns the key as a []byte.
func (k Ed25519Private) Slice() []byte { return k[:] }

// Public returns the public half stored in the second 32 bytes.
func (k Ed25519Private) Public() Ed25519Public {
	var pub Ed25519Public
	copy(pub[:], k[32:])
	return pub
}

// Seed returns the 32-byte RFC 8032 private seed.
func (k Ed25519Private) Seed() []byte { return ed25519.PrivateKey(k[:]).Seed() }

// Ed25519PublicFromBytes copies b into an Ed25519Public.
func Ed25519PublicFromBytes(b []byte) (Ed25519Public, error) {
	var out Ed25519Public
	if len(b) != len(out) {
		return out, fmt.Errorf("ed25519 public: want %d bytes, got %d", len(out), len(b))
	}
	copy(out[:], b)
	return out, nil
}

// X25519PublicFromBytes copies b into an X25519Public.
func X25519PublicFromBytes(b []byte) (X25519Public, error) {
	var out X25519Public
	if len(b) != len(out) {
		return out, fmt.Errorf("x25519 public: want %d bytes, got %d", len(out), len(b))
	}
	copy(out[:], b)
	return out, nil
}
