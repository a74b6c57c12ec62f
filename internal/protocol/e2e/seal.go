package e2e

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/chacha20poly1305"

	"autonym/internal/codec"
	"autonym/internal/crypto"
	"autonym/internal/digest"
	"autonym/internal/domain"
	"autonym/internal/util/memzero"
)

// Info is the key-derivation context string for message keys.
const Info = "autonym-e2e-v1"

const keySize = chacha20poly1305.KeySize

// Seal encrypts plaintext from one identifier to another. recipient is the
// X25519 form of the recipient's current key. Randomness for the ephemeral
// key and nonce is read from rng, or crypto/rand when rng is nil.
func Seal(
	from, to domain.AID,
	recipient domain.X25519Public,
	plaintext []byte,
	at time.Time,
	rng io.Reader,
) (domain.Envelope, error) {
	if rng == nil {
		rng = rand.Reader
	}

	ephPriv, ephPub, err := crypto.GenerateX25519(rng)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("e2e: ephemeral key: %w", err)
	}
	defer memzero.Zero32((*[32]byte)(&ephPriv))

	env := domain.Envelope{
		From:         from,
		To:           to,
		Timestamp:    at.UTC().Truncate(time.Second).Format(time.RFC3339),
		EphemeralKey: ephPub,
	}
	if _, err := io.ReadFull(rng, env.Nonce[:]); err != nil {
		return domain.Envelope{}, fmt.Errorf("e2e: nonce: %w", err)
	}

	shared, err := crypto.DH(ephPriv, recipient)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("e2e: key agreement: %w", err)
	}
	key, err := messageKey(shared, from, to)
	memzero.Zero32(&shared)
	if err != nil {
		return domain.Envelope{}, err
	}
	defer memzero.Zero(key)

	ad, err := associatedData(env)
	if err != nil {
		return domain.Envelope{}, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return domain.Envelope{}, err
	}
	env.Ciphertext = aead.Seal(nil, env.Nonce[:], plaintext, ad)
	return env, nil
}

// Open authenticates and decrypts env with the recipient's X25519 private key.
func Open(env domain.Envelope, recipient domain.X25519Private) ([]byte, error) {
	shared, err := crypto.DH(recipient, env.EphemeralKey)
	if err != nil {
		return nil, domain.ErrAuthenticationFailed
	}
	key, err := messageKey(shared, env.From, env.To)
	memzero.Zero32(&shared)
	if err != nil {
		return nil, domain.ErrAuthenticationFailed
	}
	defer memzero.Zero(key)

	ad, err := associatedData(env)
	if err != nil {
		return nil, domain.ErrAuthenticationFailed
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, domain.ErrAuthenticationFailed
	}
	pt, err := aead.Open(nil, env.Nonce[:], env.Ciphertext, ad)
	if err != nil {
		return nil, domain.ErrAuthenticationFailed
	}
	return pt, nil
}

// messageKey derives the symmetric key for one envelope.
func messageKey(shared [32]byte, from, to domain.AID) ([]byte, error) {
	salt := make([]byte, 0, len(from)+len(to))
	salt = append(salt, from[:]...)
	salt = append(salt, to[:]...)
	return digest.DeriveKey(shared[:], salt, []byte(Info), keySize)
}

// associatedData is the canonical encoding of the envelope header.
func associatedData(env domain.Envelope) ([]byte, error) {
	return codec.Encode(codec.Record{
		"from":         env.From.Slice(),
		"to":           env.To.Slice(),
		"ts":           env.Timestamp,
		"ephemeral_pk": env.EphemeralKey.Slice(),
	})
}
