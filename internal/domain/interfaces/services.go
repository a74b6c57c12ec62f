package interfaces

import (
	"context"

	domaintypes "autonym/internal/domain/types"
)

// ControllerService creates and evolves locally controlled identifiers and
// ingests foreign key event logs.
type ControllerService interface {
	Incept(ctx context.Context, passphrase, label string, recovery bool) (
		domaintypes.KeyState,
		string, // recovery phrase, empty unless requested
		error,
	)
	Rotate(ctx context.Context, passphrase string, aid domaintypes.AID) (domaintypes.KeyState, error)
	Deactivate(ctx context.Context, passphrase string, aid domaintypes.AID) (domaintypes.KeyState, error)
	Ingest(ctx context.Context, event domaintypes.Event) (domaintypes.KeyState, error)
	State(ctx context.Context, aid domaintypes.AID) (domaintypes.KeyState, error)
	Events(ctx context.Context, aid domaintypes.AID) ([]domaintypes.Event, error)
}

// MessageService seals and opens envelopes between identifiers whose logs are
// known locally.
type MessageService interface {
	Seal(
		ctx context.Context,
		from domaintypes.AID,
		to domaintypes.AID,
		plaintext []byte,
	) (domaintypes.Envelope, error)
	Open(
		ctx context.Context,
		passphrase string,
		as domaintypes.AID,
		envelope domaintypes.Envelope,
	) ([]byte, error)
}
