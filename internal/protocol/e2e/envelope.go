package e2e

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"autonym/internal/codec"
	"autonym/internal/domain"
)

type wireEnvelope struct {
	From         []byte `cbor:"from"`
	To           []byte `cbor:"to"`
	Timestamp    string `cbor:"ts"`
	EphemeralKey []byte `cbor:"ephemeral_pk"`
	Nonce        []byte `cbor:"nonce"`
	Ciphertext   []byte `cbor:"ct"`
}

// EncodeEnvelope returns the canonical wire form of env.
func EncodeEnvelope(env domain.Envelope) ([]byte, error) {
	ct := env.Ciphertext
	if ct == nil {
		ct = []byte{}
	}
	return codec.Encode(codec.Record{
		"from":         env.From.Slice(),
		"to":           env.To.Slice(),
		"ts":           env.Timestamp,
		"ephemeral_pk": env.EphemeralKey.Slice(),
		"nonce":        env.Nonce[:],
		"ct":           ct,
	})
}

// DecodeEnvelope parses the wire form produced by EncodeEnvelope.
func DecodeEnvelope(b []byte) (domain.Envelope, error) {
	var w wireEnvelope
	if err := codec.Decode(b, &w); err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: %v", domain.ErrMalformedEnvelope, err)
	}

	var env domain.Envelope
	for _, f := range []struct {
		name string
		dst  []byte
		src  []byte
	}{
		{"from", env.From[:], w.From},
		{"to", env.To[:], w.To},
		{"ephemeral_pk", env.EphemeralKey[:], w.EphemeralKey},
		{"nonce", env.Nonce[:], w.Nonce},
	} {
		if len(f.src) != len(f.dst) {
			return domain.Envelope{}, fmt.Errorf("%w: %s: want %d bytes, got %d", domain.ErrMalformedEnvelope, f.name, len(f.dst), len(f.src))
		}
		copy(f.dst, f.src)
	}
	if len(w.Ciphertext) < chacha20poly1305.Overhead {
		return domain.Envelope{}, fmt.Errorf("%w: ciphertext shorter than tag", domain.ErrMalformedEnvelope)
	}
	env.Timestamp = w.Timestamp
	env.Ciphertext = w.Ciphertext
	return env, nil
}
