// Package store persists key event logs and the local keyring.
//
// It contains concrete implementations of the domain storage interfaces:
//   - Key event logs as one CBOR file per identifier (KELFileStore)
//   - Key event logs in a SQLite database (KELSQLiteStore)
//   - Private keys of locally controlled identifiers, sealed under a
//     passphrase with scrypt and ChaCha20-Poly1305 (KeyringFileStore)
//
// Both log stores hold only events that already passed validation and
// refuse a second event at an existing sequence, so two competing rotations
// can never both be persisted. All methods are safe for concurrent use.
// Files live under the configured home directory and are replaced
// atomically through a temp file and rename.
package store
