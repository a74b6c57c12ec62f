package types

// Envelope is a sealed point-to-point message between two identifiers.
//
// From, To, Timestamp and EphemeralKey travel in cleartext but are bound as
// associated data, so altering any of them makes Open fail.
type Envelope struct {
	From         AID
	To           AID
	Timestamp    string
	EphemeralKey X25519Public
	Nonce        [24]byte
	Ciphertext   []byte // includes the 16-byte Poly1305 tag
}
