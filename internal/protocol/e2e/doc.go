// Package e2e seals one-shot messages from one identifier to another.
//
// # Overview
//
// The recipient's current Ed25519 key, as established by its key event log,
// is converted to its X25519 form. The sender never needs a long-term X25519
// key of its own: every envelope carries a fresh ephemeral public key.
//
// # Flows
//
// Seal:
//  1. Generate an ephemeral X25519 key pair.
//  2. DH(ephemeral, recipient) gives the shared secret.
//  3. DeriveKey(shared, from || to, "autonym-e2e-v1", 32) gives the message key.
//  4. Encrypt with XChaCha20-Poly1305 under a random 24-byte nonce, binding the
//     canonical encoding of {from, to, ts, ephemeral_pk} as associated data.
//
// Open:
//  1. Convert the recipient's Ed25519 private key to X25519.
//  2. DH(recipient, ephemeral) and the same derivation give the message key.
//  3. Decrypt and authenticate.
//
// # Errors
//
// Every Open failure, whether a low-order ephemeral key or a bad tag, is
// reported as domain.ErrAuthenticationFailed and returns no plaintext.
//
// # Security notes
//
// Ephemeral private keys, shared secrets and message keys are wiped after
// use. Nonces are drawn fresh for every envelope; callers must never reuse
// an envelope's nonce with the same ephemeral key.
package e2e
