// Package message seals and opens envelopes between identifiers.
//
// The recipient's current key is taken from its replayed key event log, so
// a message can only be sealed to an identifier whose log is known locally
// and still active. Opening requires the recipient's keys from the keyring.
package message
