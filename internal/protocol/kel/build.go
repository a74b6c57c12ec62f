package kel

import (
	"errors"
	"fmt"
	"time"

	"autonym/internal/digest"
	"autonym/internal/domain"
)

var errNoSigner = fmt.Errorf("%w: no signer", domain.ErrMalformedEvent)

// BuildInception creates the first event of a new chain.
//
// current signs the event; next is the public key committed to for the first
// rotation. The returned state is the chain after inception.
func BuildInception(current domain.Signer, next domain.Ed25519Public, at time.Time) (domain.Event, domain.KeyState, error) {
	if current == nil {
		return domain.Event{}, domain.KeyState{}, errNoSigner
	}
	ev := domain.Event{
		Version:        Version,
		Type:           domain.EventInception,
		Seq:            0,
		KeyType:        KeyTypeEd25519,
		Key:            current.PublicKey(),
		NextCommitment: digest.Commit(next),
		Timestamp:      FormatTimestamp(at),
	}

	// Pass 1: the identifier is the digest of content without itself.
	aid, err := DeriveAID(ev)
	if err != nil {
		return domain.Event{}, domain.KeyState{}, err
	}
	ev.AID = aid

	// Pass 2: the event digest covers the content including the identifier.
	if err := seal(&ev, current); err != nil {
		return domain.Event{}, domain.KeyState{}, err
	}

	return ev, domain.KeyState{
		AID:            ev.AID,
		Seq:            0,
		CurrentKey:     ev.Key,
		NextCommitment: ev.NextCommitment,
		LastDigest:     ev.Digest,
	}, nil
}

// BuildRotation appends a key rotation to the chain described by state.
//
// newCurrent must satisfy the commitment in state. The event is signed by
// outgoing, the key being superseded; control of newCurrent is proven when
// the next rotation reveals a key matching newNext.
func BuildRotation(
	state domain.KeyState,
	outgoing domain.Signer,
	newCurrent domain.Ed25519Public,
	newNext domain.Ed25519Public,
	at time.Time,
) (domain.Event, domain.KeyState, error) {
	if err := checkExtendable(state); err != nil {
		return domain.Event{}, domain.KeyState{}, err
	}
	if outgoing == nil {
		return domain.Event{}, domain.KeyState{}, errNoSigner
	}
	if got := digest.Commit(newCurrent); got != state.NextCommitment {
		return domain.Event{}, domain.KeyState{}, domain.Mismatch(domain.ErrPreRotationMismatch, fieldNext, state.NextCommitment, got)
	}
	if pub := outgoing.PublicKey(); pub != state.CurrentKey {
		return domain.Event{}, domain.KeyState{}, domain.Mismatch(domain.ErrSignatureInvalid, "signer", keyHex(state.CurrentKey), keyHex(pub))
	}

	ev := domain.Event{
		Version:        Version,
		Type:           domain.EventRotation,
		AID:            state.AID,
		Seq:            state.Seq + 1,
		KeyType:        KeyTypeEd25519,
		Key:            newCurrent,
		NextCommitment: digest.Commit(newNext),
		Previous:       state.LastDigest,
		Timestamp:      FormatTimestamp(at),
	}
	if err := seal(&ev, outgoing); err != nil {
		return domain.Event{}, domain.KeyState{}, err
	}

	return ev, domain.KeyState{
		AID:            state.AID,
		Seq:            ev.Seq,
		CurrentKey:     newCurrent,
		NextCommitment: ev.NextCommitment,
		LastDigest:     ev.Digest,
	}, nil
}

// BuildDeactivation terminates the chain described by state.
//
// Both the current key and the pre-committed next key must sign. A missing
// signer or a signer that cannot sign fails with ErrDualSignatureRequired.
func BuildDeactivation(
	state domain.KeyState,
	current domain.Signer,
	next domain.Signer,
	at time.Time,
) (domain.Event, domain.KeyState, error) {
	if err := checkExtendable(state); err != nil {
		return domain.Event{}, domain.KeyState{}, err
	}
	if current == nil || next == nil {
		return domain.Event{}, domain.KeyState{}, domain.ErrDualSignatureRequired
	}
	if pub := current.PublicKey(); pub != state.CurrentKey {
		return domain.Event{}, domain.KeyState{}, domain.Mismatch(domain.ErrSignatureInvalid, "signer", keyHex(state.CurrentKey), keyHex(pub))
	}
	nextPub := next.PublicKey()
	if got := digest.Commit(nextPub); got != state.NextCommitment {
		return domain.Event{}, domain.KeyState{}, domain.Mismatch(domain.ErrPreRotationMismatch, fieldNextKey, state.NextCommitment, got)
	}

	ev := domain.Event{
		Version:   Version,
		Type:      domain.EventDeactivation,
		AID:       state.AID,
		Seq:       state.Seq + 1,
		Previous:  state.LastDigest,
		Timestamp: FormatTimestamp(at),
		NextKey:   nextPub,
	}
	d, err := ComputeDigest(ev)
	if err != nil {
		return domain.Event{}, domain.KeyState{}, err
	}
	ev.Digest = d

	sig, err := current.Sign(d[:])
	if err != nil {
		return domain.Event{}, domain.KeyState{}, fmt.Errorf("%w: current key: %v", domain.ErrDualSignatureRequired, err)
	}
	ns, err := next.Sign(d[:])
	if err != nil {
		return domain.Event{}, domain.KeyState{}, fmt.Errorf("%w: next key: %v", domain.ErrDualSignatureRequired, err)
	}
	ev.Signature = sig
	ev.NextSignature = ns

	return ev, domain.KeyState{
		AID:         state.AID,
		Seq:         ev.Seq,
		LastDigest:  ev.Digest,
		Deactivated: true,
	}, nil
}

// seal computes the event digest and signs it.
func seal(ev *domain.Event, signer domain.Signer) error {
	d, err := ComputeDigest(*ev)
	if err != nil {
		return err
	}
	ev.Digest = d
	sig, err := signer.Sign(d[:])
	if err != nil {
		return fmt.Errorf("sign %s: %w", ev.Type, err)
	}
	ev.Signature = sig
	return nil
}

func checkExtendable(state domain.KeyState) error {
	if state.Deactivated {
		return domain.ErrChainTerminated
	}
	if state.AID.IsZero() {
		return errors.Join(domain.ErrMalformedEvent, errors.New("no chain to extend"))
	}
	return nil
}
