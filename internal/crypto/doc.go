// Package crypto exposes the minimal primitives used by autonym.
//
// Contents
//
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     NewEd25519FromSeed, SignEd25519, VerifyEd25519) and a KeySigner that
//     satisfies domain.Signer
//   - X25519 key generation, clamping and Diffie–Hellman (GenerateX25519, DH)
//   - Short fingerprints of keys and identifiers for display (Fingerprint)
//   - Base64 helpers for envelopes printed on the terminal (B64, FromB64)
//
// # Notes
//
// All functions return fixed-size array types defined in internal/domain to
// avoid accidental reallocations. Callers should treat returned secrets as
// sensitive and wipe them with memzero.Zero when practical.
package crypto
