// Package kel builds and validates key event logs: the append-only,
// hash-chained sequence of inception, rotation and deactivation events that
// binds an Ed25519 key to a self-certifying identifier (AID).
//
// # Derivation
//
// Inception is hashed twice. Pass 1 digests the canonical content without the
// identifier; that digest is the AID. Pass 2 digests the content again with
// the AID folded in; that digest is the event digest d. Every later event is
// digested once. Signatures always cover d, never raw content.
//
// # Pre-rotation
//
// Each inception and rotation commits to the next key with n = BLAKE3(next).
// A rotation reveals a key k that must satisfy the previous n and is signed by
// the outgoing key. A deactivation carries no k or n; it is signed by the
// current key and by the pre-committed next key, whose public half travels
// beside the signature so any verifier can check it against n.
//
// # State
//
// Build and Validate take an immutable KeyState snapshot and return a new one.
// Nothing is mutated in place, so independent chains can be validated
// concurrently. Callers must serialise calls per chain: two events accepted
// at the same sequence number would fork it.
//
// # Errors
//
// Every failure unwraps to one of the domain error kinds (ErrDigestMismatch,
// ErrSequenceGap, ErrChainLinkBroken, ErrSignatureInvalid,
// ErrPreRotationMismatch, ErrDualSignatureRequired, ErrChainTerminated,
// ErrMalformedEvent). Mismatches carry the expected and actual values.
package kel
