package crypto

import (
	"encoding/hex"

	"autonym/internal/digest"
	"autonym/internal/domain"
)

// Fingerprint returns a short hex fingerprint of a public key or identifier.
//
// It hashes with BLAKE3 and truncates to 10 bytes (20 hex chars).
func Fingerprint(b []byte) domain.Fingerprint {
	sum := digest.Sum(b)
	return domain.Fingerprint(hex.EncodeToString(sum[:10]))
}
