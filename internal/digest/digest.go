package digest

import (
	"errors"

	"lukechampine.com/blake3"

	"autonym/internal/domain"
)

// Size is the output length of Sum, Commit and Keyed.
const Size = 32

// maxBlocks bounds DeriveKey output since the block counter is one byte.
const maxBlocks = 255

var errLengthTooLarge = errors.New("digest: derived key length too large")

// Sum returns the BLAKE3-256 digest of data.
func Sum(data []byte) domain.Digest {
	return blake3.Sum256(data)
}

// Commit returns the pre-rotation commitment to a public key.
func Commit(pub domain.Ed25519Public) domain.Digest {
	return Sum(pub[:])
}

// Keyed returns the keyed BLAKE3-256 digest of data.
func Keyed(key [Size]byte, data []byte) domain.Digest {
	h := blake3.New(Size, key[:])
	_, _ = h.Write(data)
	var out domain.Digest
	copy(out[:], h.Sum(nil))
	return out
}

// DeriveKey derives length bytes from secret.
//
// Extract: PRK = Keyed(salt32, secret), where salt32 is salt when it is
// exactly 32 bytes and Sum(salt) otherwise.
// Expand:  T(i) = Keyed(PRK, T(i-1) || info || i) for i = 1, 2, ...
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	if length < 0 || length > maxBlocks*Size {
		return nil, errLengthTooLarge
	}

	var salt32 [Size]byte
	if len(salt) == Size {
		copy(salt32[:], salt)
	} else {
		salt32 = Sum(salt)
	}
	prk := Keyed(salt32, secret)

	var (
		t   []byte
		okm      = make([]byte, 0, length+Size)
		cnt byte = 1
	)
	for len(okm) < length {
		block := make([]byte, 0, len(t)+len(info)+1)
		block = append(block, t...)
		block = append(block, info...)
		block = append(block, cnt)
		sum := Keyed(prk, block)
		t = sum[:]
		okm = append(okm, t...)
		cnt++
	}
	return okm[:length], nil
}
