// Package controller maintains key event logs for locally controlled and
// foreign identifiers.
//
// # Overview
//
// The service keeps an arena of chains indexed by identifier. Each chain
// has its own lock, so build, validate and append for one identifier are
// serialized while distinct identifiers proceed concurrently. Every accepted
// event produces a new KeyState snapshot; nothing is mutated in place.
//
// # Flows
//
// Incept draws the current and next key pairs from the configured key
// source, or from a fresh recovery phrase, builds and self-validates the
// inception, seals the keys in the keyring and appends the event.
//
// Rotate promotes the pre-committed next key to current, draws a new next
// key and appends a rotation signed by the outgoing key.
//
// Deactivate signs with both the current and next key and terminates the
// chain. The keyring entry is kept with its keys wiped.
//
// Ingest validates a foreign event against the stored chain and appends it.
//
// # Errors
//
// Validation failures are the kinds in internal/domain, unchanged. Store
// failures are wrapped. A failed operation leaves the log and keyring as
// they were.
package controller
