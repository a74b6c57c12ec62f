// Package digest is the single source of every hash-derived value in the
// protocol: identifiers, event digests, pre-rotation commitments and
// symmetric keys.
//
// All functions are BLAKE3 based, pure and safe for concurrent use.
//
//   - Sum: 32-byte content digest
//   - Commit: commitment to a future public key (Commit(k) == Sum(k))
//   - Keyed: keyed BLAKE3 with a 32-byte key
//   - DeriveKey: extract-then-expand KDF over keyed BLAKE3
package digest
