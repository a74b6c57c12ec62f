package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"

	"autonym/internal/domain"
)

var errNoSigningKey = errors.New("signer has no private key")

// GenerateEd25519 returns a new Ed25519 signing key pair read from r, or from
// crypto/rand when r is nil.
func GenerateEd25519(r io.Reader) (priv domain.Ed25519Private, pub domain.Ed25519Public, err error) {
	if r == nil {
		r = rand.Reader
	}
	pk, sk, err := ed25519.GenerateKey(r)
	if err != nil {
		return priv, pub, err
	}
	copy(priv[:], sk)
	copy(pub[:], pk)
	return priv, pub, nil
}

// NewEd25519FromSeed expands a 32-byte RFC 8032 seed into a key pair.
func NewEd25519FromSeed(seed []byte) (priv domain.Ed25519Private, pub domain.Ed25519Public, err error) {
	if len(seed) != ed25519.SeedSize {
		return priv, pub, errors.New("ed25519 seed must be 32 bytes")
	}
	sk := ed25519.NewKeyFromSeed(seed)
	copy(priv[:], sk)
	copy(pub[:], sk[32:])
	return priv, pub, nil
}

// SignEd25519 signs msg with priv and returns the signature.
func SignEd25519(priv domain.Ed25519Private, msg []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(priv[:]), msg)
}

// VerifyEd25519 verifies sig over msg with pub.
func VerifyEd25519(pub domain.Ed25519Public, msg, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig)
}

// KeySigner signs with an in-memory Ed25519 private key.
type KeySigner struct {
	priv domain.Ed25519Private
	pub  domain.Ed25519Public
	set  bool
}

// NewKeySigner returns a signer holding a copy of priv.
func NewKeySigner(priv domain.Ed25519Private) *KeySigner {
	return &KeySigner{priv: priv, pub: priv.Public(), set: true}
}

// PublicKey returns the signer's public key.
func (s *KeySigner) PublicKey() domain.Ed25519Public {
	if s == nil {
		return domain.Ed25519Public{}
	}
	return s.pub
}

// Sign signs msg.
func (s *KeySigner) Sign(msg []byte) ([]byte, error) {
	if s == nil || !s.set {
		return nil, errNoSigningKey
	}
	return SignEd25519(s.priv, msg), nil
}

// Close wipes the private key held by the signer.
func (s *KeySigner) Close() {
	if s == nil {
		return
	}
	s.priv = domain.Ed25519Private{}
	s.set = false
}

// Compile-time assertion that KeySigner implements domain.Signer.
var _ domain.Signer = (*KeySigner)(nil)
