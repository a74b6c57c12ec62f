package types

// KeyringEntry holds the private key material for one locally controlled chain.
type KeyringEntry struct {
	Label     string         `json:"label,omitempty"`
	AID       AID            `json:"aid"`
	Current   Ed25519Private `json:"current"`
	Next      Ed25519Private `json:"next"`
	Recovery  string         `json:"recovery,omitempty"`
	NextIndex uint32         `json:"next_index,omitempty"`
}
