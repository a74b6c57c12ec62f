package kel

import (
	"fmt"

	"autonym/internal/codec"
	"autonym/internal/domain"
	"autonym/internal/domain/types"
)

// wireEvent is the decoding target for the canonical wire form. Fields absent
// for an event type are left empty and checked by fromWire.
type wireEvent struct {
	Version   uint64  `cbor:"v"`
	Type      string  `cbor:"t"`
	AID       []byte  `cbor:"aid"`
	Seq       uint64  `cbor:"s"`
	KeyType   string  `cbor:"kt,omitempty"`
	Key       []byte  `cbor:"k,omitempty"`
	Next      []byte  `cbor:"n,omitempty"`
	Previous  []byte  `cbor:"p,omitempty"`
	Witnesses *[]any  `cbor:"w,omitempty"`
	Threshold *uint64 `cbor:"wt,omitempty"`
	Services  *[]any  `cbor:"svc,omitempty"`
	Timestamp string  `cbor:"ts"`
	Digest    []byte  `cbor:"d"`
	Signature []byte  `cbor:"sig"`
	NextSig   []byte  `cbor:"ns,omitempty"`
	NextKey   []byte  `cbor:"nk,omitempty"`
}

// Encode returns the canonical wire form of ev: its content plus digest,
// signatures and, for deactivation, the revealed next key.
func Encode(ev domain.Event) ([]byte, error) {
	r := content(ev, true)
	r[fieldDigest] = ev.Digest.Slice()
	r[fieldSignature] = nonNil(ev.Signature)
	if ev.Type == domain.EventDeactivation {
		r[fieldNextSig] = nonNil(ev.NextSignature)
		if !ev.NextKey.IsZero() {
			r[fieldNextKey] = ev.NextKey.Slice()
		}
	}
	return codec.Encode(r)
}

// Decode parses the wire form produced by Encode. It checks shape only;
// Validate decides whether the event may extend a chain.
func Decode(b []byte) (domain.Event, error) {
	var w wireEvent
	if err := codec.Decode(b, &w); err != nil {
		return domain.Event{}, fmt.Errorf("%w: %v", domain.ErrMalformedEvent, err)
	}
	return fromWire(w)
}

func fromWire(w wireEvent) (domain.Event, error) {
	ev := domain.Event{
		Version:       w.Version,
		Type:          domain.EventType(w.Type),
		Seq:           w.Seq,
		KeyType:       w.KeyType,
		Timestamp:     w.Timestamp,
		Signature:     w.Signature,
		NextSignature: w.NextSig,
	}
	if !ev.Type.Valid() {
		return domain.Event{}, fmt.Errorf("%w: unknown event type %q", domain.ErrMalformedEvent, w.Type)
	}
	if err := checkEmptyLists(ev.Type, w); err != nil {
		return domain.Event{}, err
	}

	var err error
	if ev.AID, err = fixed[domain.AID](fieldAID, w.AID); err != nil {
		return domain.Event{}, err
	}
	if ev.Digest, err = fixed[domain.Digest](fieldDigest, w.Digest); err != nil {
		return domain.Event{}, err
	}

	switch ev.Type {
	case domain.EventInception, domain.EventRotation:
		if ev.Key, err = fixed[domain.Ed25519Public](fieldKey, w.Key); err != nil {
			return domain.Event{}, err
		}
		if ev.NextCommitment, err = fixed[domain.Digest](fieldNext, w.Next); err != nil {
			return domain.Event{}, err
		}
		if w.NextSig != nil || w.NextKey != nil {
			return domain.Event{}, fmt.Errorf("%w: next key fields on %s", domain.ErrMalformedEvent, ev.Type)
		}
	case domain.EventDeactivation:
		if w.KeyType != "" || w.Key != nil || w.Next != nil {
			return domain.Event{}, fmt.Errorf("%w: deactivation carries key fields", domain.ErrMalformedEvent)
		}
		if len(w.NextKey) != 0 {
			if ev.NextKey, err = fixed[domain.Ed25519Public](fieldNextKey, w.NextKey); err != nil {
				return domain.Event{}, err
			}
		}
	}

	switch {
	case ev.Type == domain.EventInception && w.Previous != nil:
		return domain.Event{}, fmt.Errorf("%w: inception carries a previous digest", domain.ErrMalformedEvent)
	case ev.Type != domain.EventInception:
		if ev.Previous, err = fixed[domain.Digest](fieldPrevious, w.Previous); err != nil {
			return domain.Event{}, err
		}
	}
	return ev, nil
}

// checkEmptyLists requires the witness and service placeholders exactly where
// the content carries them, and requires them to be empty.
func checkEmptyLists(typ domain.EventType, w wireEvent) error {
	wantWitnesses := typ != domain.EventDeactivation
	wantServices := typ == domain.EventInception

	if (w.Witnesses != nil) != wantWitnesses || (w.Threshold != nil) != wantWitnesses {
		return fmt.Errorf("%w: witness fields on %s", domain.ErrMalformedEvent, typ)
	}
	if (w.Services != nil) != wantServices {
		return fmt.Errorf("%w: service field on %s", domain.ErrMalformedEvent, typ)
	}
	if w.Witnesses != nil && (len(*w.Witnesses) != 0 || *w.Threshold != 0) {
		return fmt.Errorf("%w: witnesses are not supported", domain.ErrMalformedEvent)
	}
	if w.Services != nil && len(*w.Services) != 0 {
		return fmt.Errorf("%w: services are not supported", domain.ErrMalformedEvent)
	}
	return nil
}

func fixed[T types.AID | types.Digest | types.Ed25519Public](field string, b []byte) (T, error) {
	var out T
	if len(b) != len(out) {
		return out, domain.Mismatch(domain.ErrMalformedEvent, field, fmt.Sprintf("%d bytes", len(out)), fmt.Sprintf("%d bytes", len(b)))
	}
	copy(out[:], b)
	return out, nil
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
