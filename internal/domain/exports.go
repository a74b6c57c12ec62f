package domain

import (
	interfaces "autonym/internal/domain/interfaces"
	types "autonym/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	AID            = types.AID
	Digest         = types.Digest
	Fingerprint    = types.Fingerprint
	EventType      = types.EventType
	Event          = types.Event
	KeyState       = types.KeyState
	Envelope       = types.Envelope
	KeyringEntry   = types.KeyringEntry
	X25519Public   = types.X25519Public
	X25519Private  = types.X25519Private
	Ed25519Public  = types.Ed25519Public
	Ed25519Private = types.Ed25519Private
)

// Event type constants re-exported for compact imports.
const (
	EventInception    = types.EventInception
	EventRotation     = types.EventRotation
	EventDeactivation = types.EventDeactivation
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	Signer            = interfaces.Signer
	KeySource         = interfaces.KeySource
	KeyEventLog       = interfaces.KeyEventLog
	Keyring           = interfaces.Keyring
	ControllerService = interfaces.ControllerService
	MessageService    = interfaces.MessageService
)

// ParseAID decodes the base58 text form of an identifier.
func ParseAID(s string) (AID, error) { return types.ParseAID(s) }
