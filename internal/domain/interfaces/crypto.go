package interfaces

import domaintypes "autonym/internal/domain/types"

// Signer is the external signing capability. Private key bytes stay behind
// it; the protocol only ever sees public keys and signatures.
type Signer interface {
	PublicKey() domaintypes.Ed25519Public
	Sign(msg []byte) ([]byte, error)
}

// KeySource supplies Ed25519 key pairs. Production code injects a random or
// recovery-phrase source; tests inject a deterministic one.
type KeySource interface {
	KeyPair(index uint32) (domaintypes.Ed25519Private, domaintypes.Ed25519Public, error)
}
