// Package codec is the canonical encoding used for every digest and
// signature input.
//
// Records are encoded as CBOR with RFC 8949 §4.2.1 core deterministic
// encoding: shortest-form integers and lengths, byte strings as-is, map keys
// sorted by their encoded bytes and no indefinite-length items. Two equal
// records therefore always produce identical bytes, on every implementation
// that follows the same rules.
//
// Only byte strings, integers, text strings, booleans, sequences and nested
// records are accepted; anything else fails with an *EncodingError before a
// single byte is produced.
package codec
