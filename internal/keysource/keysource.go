package keysource

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io"
	"strings"

	"github.com/tyler-smith/go-bip39"

	"autonym/internal/crypto"
	"autonym/internal/digest"
	"autonym/internal/domain"
	"autonym/internal/util/memzero"
)

// ReferenceSeed is the seed of the published reference vectors.
const ReferenceSeed = "autonym-test-vectors-v1"

var (
	ErrInvalidMnemonic = errors.New("invalid recovery phrase")
	ErrEmptySeed       = errors.New("key source seed is empty")
)

// Random draws independent key pairs from a secure reader. The index is
// ignored.
type Random struct {
	r io.Reader
}

// NewRandom returns a Random source over r, or crypto/rand when r is nil.
func NewRandom(r io.Reader) *Random {
	if r == nil {
		r = rand.Reader
	}
	return &Random{r: r}
}

// KeyPair returns a fresh key pair.
func (s *Random) KeyPair(uint32) (domain.Ed25519Private, domain.Ed25519Public, error) {
	return crypto.GenerateEd25519(s.r)
}

// Seeded derives key pair i from BLAKE3(seed || BE32(i)).
type Seeded struct {
	seed []byte
}

// Deterministic returns a seeded source for tests and reference vectors.
func Deterministic(seed []byte) (*Seeded, error) {
	if len(seed) == 0 {
		return nil, ErrEmptySeed
	}
	return &Seeded{seed: append([]byte(nil), seed...)}, nil
}

// KeyPair returns the key pair at index.
func (s *Seeded) KeyPair(index uint32) (domain.Ed25519Private, domain.Ed25519Public, error) {
	material := make([]byte, len(s.seed)+4)
	copy(material, s.seed)
	binary.BigEndian.PutUint32(material[len(s.seed):], index)
	seed := digest.Sum(material)
	memzero.Zero(material)
	defer memzero.Zero(seed[:])
	return crypto.NewEd25519FromSeed(seed[:])
}

// Close wipes the seed.
func (s *Seeded) Close() {
	memzero.Zero(s.seed)
}

// NewMnemonic returns a fresh 24-word recovery phrase.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	defer memzero.Zero(entropy)
	return bip39.NewMnemonic(entropy)
}

// Recovery returns a seeded source for a BIP-39 phrase.
func Recovery(mnemonic string) (*Seeded, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed := bip39.NewSeed(mnemonic, "")
	defer memzero.Zero(seed)
	return Deterministic(seed)
}

// Compile-time assertions that both sources implement domain.KeySource.
var (
	_ domain.KeySource = (*Random)(nil)
	_ domain.KeySource = (*Seeded)(nil)
)
