package e2e

import (
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"

	"autonym/internal/crypto"
	"autonym/internal/domain"
	"autonym/internal/util/memzero"
)

// ExchangePublic maps an Ed25519 public key to its X25519 (Montgomery) form.
func ExchangePublic(pub domain.Ed25519Public) (domain.X25519Public, error) {
	var out domain.X25519Public
	p, err := new(edwards25519.Point).SetBytes(pub[:])
	if err != nil {
		return out, fmt.Errorf("e2e: convert public key: %w", err)
	}
	copy(out[:], p.BytesMontgomery())
	return out, nil
}

// ExchangePrivate maps an Ed25519 private key to the X25519 scalar matching
// ExchangePublic(priv.Public()): the clamped first half of SHA-512(seed).
func ExchangePrivate(priv domain.Ed25519Private) domain.X25519Private {
	seed := priv.Seed()
	h := sha512.Sum512(seed)
	memzero.Zero(seed)

	var out domain.X25519Private
	copy(out[:], h[:32])
	memzero.Zero(h[:])
	crypto.Clamp(&out)
	return out
}
