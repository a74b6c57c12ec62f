// Package keysource supplies the Ed25519 key pairs a controller signs with.
//
// A Source is injected wherever keys are created so that production code and
// tests never share a key-generation path:
//
//   - Random draws every key from a cryptographically secure reader.
//   - Recovery derives an indexed key sequence from a BIP-39 phrase, so a
//     controller can regenerate its current and pre-committed keys.
//   - Deterministic derives the same indexed sequence from a fixed seed. It
//     exists to make protocol behaviour reproducible in tests and reference
//     vectors and must not be used for real identifiers.
//
// Indexed derivation is Ed25519 from the seed BLAKE3(seed || BE32(index)).
package keysource
