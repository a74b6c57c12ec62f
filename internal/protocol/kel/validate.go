package kel

import (
	"fmt"
	"time"

	"autonym/internal/crypto"
	"autonym/internal/digest"
	"autonym/internal/domain"
)

// Validate checks ev against the chain state it claims to extend and returns
// the state after it. prior is nil for an inception.
//
// Checks run in a fixed order: terminal state, structure, digest (and the
// identifier for inception), chain link and sequence, pre-rotation
// commitment, then signatures. A tampered event therefore reports a digest
// or signature failure, while a genuine event delivered out of order reports
// a sequence gap.
func Validate(ev domain.Event, prior *domain.KeyState) (domain.KeyState, error) {
	if prior != nil && prior.Deactivated {
		return domain.KeyState{}, fmt.Errorf("%w: %s at %d", domain.ErrChainTerminated, prior.AID, prior.Seq)
	}
	if err := checkStructure(ev); err != nil {
		return domain.KeyState{}, err
	}
	if err := checkDigest(ev); err != nil {
		return domain.KeyState{}, err
	}
	if err := checkLink(ev, prior); err != nil {
		return domain.KeyState{}, err
	}

	switch ev.Type {
	case domain.EventInception:
		return validateInception(ev)
	case domain.EventRotation:
		return validateRotation(ev, *prior)
	default:
		return validateDeactivation(ev, *prior)
	}
}

func validateInception(ev domain.Event) (domain.KeyState, error) {
	if !crypto.VerifyEd25519(ev.Key, ev.Digest[:], ev.Signature) {
		return domain.KeyState{}, domain.Mismatch(domain.ErrSignatureInvalid, fieldSignature, "signature by "+keyHex(ev.Key), "invalid")
	}
	return domain.KeyState{
		AID:            ev.AID,
		Seq:            0,
		CurrentKey:     ev.Key,
		NextCommitment: ev.NextCommitment,
		LastDigest:     ev.Digest,
	}, nil
}

func validateRotation(ev domain.Event, prior domain.KeyState) (domain.KeyState, error) {
	if got := digest.Commit(ev.Key); got != prior.NextCommitment {
		return domain.KeyState{}, domain.Mismatch(domain.ErrPreRotationMismatch, fieldKey, prior.NextCommitment, got)
	}
	if !crypto.VerifyEd25519(prior.CurrentKey, ev.Digest[:], ev.Signature) {
		return domain.KeyState{}, domain.Mismatch(domain.ErrSignatureInvalid, fieldSignature, "signature by "+keyHex(prior.CurrentKey), "invalid")
	}
	return domain.KeyState{
		AID:            prior.AID,
		Seq:            ev.Seq,
		CurrentKey:     ev.Key,
		NextCommitment: ev.NextCommitment,
		LastDigest:     ev.Digest,
	}, nil
}

func validateDeactivation(ev domain.Event, prior domain.KeyState) (domain.KeyState, error) {
	switch {
	case len(ev.Signature) == 0:
		return domain.KeyState{}, fmt.Errorf("%w: missing current key signature", domain.ErrDualSignatureRequired)
	case len(ev.NextSignature) == 0:
		return domain.KeyState{}, fmt.Errorf("%w: missing next key signature", domain.ErrDualSignatureRequired)
	case ev.NextKey.IsZero():
		return domain.KeyState{}, fmt.Errorf("%w: next key not revealed", domain.ErrDualSignatureRequired)
	}
	if got := digest.Commit(ev.NextKey); got != prior.NextCommitment {
		return domain.KeyState{}, domain.Mismatch(domain.ErrPreRotationMismatch, fieldNextKey, prior.NextCommitment, got)
	}
	if !crypto.VerifyEd25519(prior.CurrentKey, ev.Digest[:], ev.Signature) {
		return domain.KeyState{}, domain.Mismatch(domain.ErrSignatureInvalid, fieldSignature, "signature by "+keyHex(prior.CurrentKey), "invalid")
	}
	if !crypto.VerifyEd25519(ev.NextKey, ev.Digest[:], ev.NextSignature) {
		return domain.KeyState{}, domain.Mismatch(domain.ErrSignatureInvalid, fieldNextSig, "signature by "+keyHex(ev.NextKey), "invalid")
	}
	return domain.KeyState{
		AID:         prior.AID,
		Seq:         ev.Seq,
		LastDigest:  ev.Digest,
		Deactivated: true,
	}, nil
}

func checkStructure(ev domain.Event) error {
	if ev.Version != Version {
		return domain.Mismatch(domain.ErrMalformedEvent, fieldVersion, Version, ev.Version)
	}
	if !ev.Type.Valid() {
		return fmt.Errorf("%w: unknown event type %q", domain.ErrMalformedEvent, ev.Type)
	}
	if ev.AID.IsZero() {
		return fmt.Errorf("%w: missing identifier", domain.ErrMalformedEvent)
	}
	if _, err := time.Parse(time.RFC3339, ev.Timestamp); err != nil {
		return fmt.Errorf("%w: timestamp %q: %v", domain.ErrMalformedEvent, ev.Timestamp, err)
	}

	switch ev.Type {
	case domain.EventInception, domain.EventRotation:
		if ev.KeyType != KeyTypeEd25519 {
			return domain.Mismatch(domain.ErrMalformedEvent, fieldKeyType, KeyTypeEd25519, ev.KeyType)
		}
		if ev.Key.IsZero() {
			return fmt.Errorf("%w: missing current key", domain.ErrMalformedEvent)
		}
		if ev.NextCommitment.IsZero() {
			return fmt.Errorf("%w: missing next key commitment", domain.ErrMalformedEvent)
		}
		if len(ev.NextSignature) != 0 || !ev.NextKey.IsZero() {
			return fmt.Errorf("%w: next key signature on %s", domain.ErrMalformedEvent, ev.Type)
		}
	case domain.EventDeactivation:
		if ev.KeyType != "" || !ev.Key.IsZero() || !ev.NextCommitment.IsZero() {
			return fmt.Errorf("%w: deactivation carries key fields", domain.ErrMalformedEvent)
		}
	}
	if ev.Type == domain.EventInception && !ev.Previous.IsZero() {
		return fmt.Errorf("%w: inception carries a previous digest", domain.ErrMalformedEvent)
	}
	return nil
}

func checkDigest(ev domain.Event) error {
	got, err := ComputeDigest(ev)
	if err != nil {
		return err
	}
	if got != ev.Digest {
		return domain.Mismatch(domain.ErrDigestMismatch, fieldDigest, got, ev.Digest)
	}
	if ev.Type != domain.EventInception {
		return nil
	}
	aid, err := DeriveAID(ev)
	if err != nil {
		return err
	}
	if aid != ev.AID {
		return domain.Mismatch(domain.ErrDigestMismatch, fieldAID, aid, ev.AID)
	}
	return nil
}

func checkLink(ev domain.Event, prior *domain.KeyState) error {
	if ev.Type == domain.EventInception {
		if prior != nil {
			return domain.Mismatch(domain.ErrSequenceGap, fieldSeq, prior.Seq+1, ev.Seq)
		}
		if ev.Seq != 0 {
			return domain.Mismatch(domain.ErrSequenceGap, fieldSeq, 0, ev.Seq)
		}
		return nil
	}

	if prior == nil {
		return domain.Mismatch(domain.ErrSequenceGap, fieldSeq, 0, ev.Seq)
	}
	if ev.AID != prior.AID {
		return domain.Mismatch(domain.ErrChainLinkBroken, fieldAID, prior.AID, ev.AID)
	}
	if ev.Seq != prior.Seq+1 {
		return domain.Mismatch(domain.ErrSequenceGap, fieldSeq, prior.Seq+1, ev.Seq)
	}
	if ev.Previous != prior.LastDigest {
		return domain.Mismatch(domain.ErrChainLinkBroken, fieldPrevious, prior.LastDigest, ev.Previous)
	}
	return nil
}
