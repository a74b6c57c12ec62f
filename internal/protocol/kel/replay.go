package kel

import (
	"errors"
	"fmt"

	"autonym/internal/domain"
)

var errEmptyLog = fmt.Errorf("%w: empty log", domain.ErrMalformedEvent)

// Replay validates a log from its inception and returns the final state.
// It stops at the first invalid event.
func Replay(events []domain.Event) (domain.KeyState, error) {
	if len(events) == 0 {
		return domain.KeyState{}, errEmptyLog
	}

	var prior *domain.KeyState
	for i, ev := range events {
		next, err := Validate(ev, prior)
		if err != nil {
			return domain.KeyState{}, fmt.Errorf("event %d (seq %d): %w", i, ev.Seq, err)
		}
		prior = &next
	}
	return *prior, nil
}

// ErrorKind returns the domain error kind err unwraps to, or nil.
func ErrorKind(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

var kinds = []error{
	domain.ErrEncoding,
	domain.ErrMalformedEvent,
	domain.ErrDigestMismatch,
	domain.ErrSequenceGap,
	domain.ErrChainLinkBroken,
	domain.ErrSignatureInvalid,
	domain.ErrPreRotationMismatch,
	domain.ErrDualSignatureRequired,
	domain.ErrChainTerminated,
}
