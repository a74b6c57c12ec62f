package interfaces

import (
	"context"

	domaintypes "autonym/internal/domain/types"
)

// KeyEventLog persists accepted key events in sequence order per identifier.
//
// Implementations store only events that already passed validation; they
// must refuse a second event at an existing (aid, seq) position.
type KeyEventLog interface {
	Append(ctx context.Context, event domaintypes.Event) error
	Events(ctx context.Context, aid domaintypes.AID) ([]domaintypes.Event, error)
	Identifiers(ctx context.Context) ([]domaintypes.AID, error)
}

// Keyring keeps the private keys of locally controlled identifiers,
// sealed under a passphrase.
type Keyring interface {
	SaveEntry(passphrase string, entry domaintypes.KeyringEntry) error
	LoadEntry(passphrase string, aid domaintypes.AID) (domaintypes.KeyringEntry, bool, error)
	ListEntries(passphrase string) ([]domaintypes.KeyringEntry, error)
	DeleteEntry(passphrase string, aid domaintypes.AID) error
}
