package crypto

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/curve25519"

	"autonym/internal/domain"
)

// GenerateX25519 returns a fresh Curve25519 key pair read from r, or from
// crypto/rand when r is nil. The private key is clamped per RFC 7748.
func GenerateX25519(r io.Reader) (priv domain.X25519Private, pub domain.X25519Public, err error) {
	if r == nil {
		r = rand.Reader
	}
	if _, err = io.ReadFull(r, priv[:]); err != nil {
		return
	}
	Clamp(&priv)
	pb, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		return
	}
	copy(pub[:], pb)
	return
}

// DH computes X25519 Diffie–Hellman. It fails for low-order peer points.
func DH(priv domain.X25519Private, pub domain.X25519Public) (out [32]byte, err error) {
	secret, err := curve25519.X25519(priv.Slice(), pub.Slice())
	if err != nil {
		return out, err
	}
	copy(out[:], secret)
	return out, nil
}

// Clamp applies RFC 7748 scalar clamping in place.
func Clamp(k *domain.X25519Private) {
	kb := k[:]
	kb[0] &= 248
	kb[31] &= 127
	kb[31] |= 64
}
