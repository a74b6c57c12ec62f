package kel

import (
	"encoding/hex"
	"time"

	"autonym/internal/codec"
	"autonym/internal/digest"
	"autonym/internal/domain"
)

const (
	// Version is the event format version.
	Version = 1
	// KeyTypeEd25519 is the only supported key type.
	KeyTypeEd25519 = "ed25519"
)

// Record field names.
const (
	fieldVersion   = "v"
	fieldType      = "t"
	fieldAID       = "aid"
	fieldSeq       = "s"
	fieldKeyType   = "kt"
	fieldKey       = "k"
	fieldNext      = "n"
	fieldPrevious  = "p"
	fieldWitnesses = "w"
	fieldThreshold = "wt"
	fieldServices  = "svc"
	fieldTimestamp = "ts"
	fieldDigest    = "d"
	fieldSignature = "sig"
	fieldNextSig   = "ns"
	fieldNextKey   = "nk"
)

// FormatTimestamp renders t as the second-precision UTC RFC 3339 form
// carried in events.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// content returns the hashed record of ev. The digest, signatures and the
// revealed next key are never part of it; a deactivation keeps an empty ns
// placeholder. Witness and service fields are always empty.
func content(ev domain.Event, withAID bool) codec.Record {
	r := codec.Record{
		fieldVersion:   ev.Version,
		fieldType:      string(ev.Type),
		fieldSeq:       ev.Seq,
		fieldTimestamp: ev.Timestamp,
	}
	if withAID {
		r[fieldAID] = ev.AID.Slice()
	}

	switch ev.Type {
	case domain.EventInception:
		r[fieldKeyType] = ev.KeyType
		r[fieldKey] = ev.Key.Slice()
		r[fieldNext] = ev.NextCommitment.Slice()
		r[fieldWitnesses] = []any{}
		r[fieldThreshold] = 0
		r[fieldServices] = []any{}
	case domain.EventRotation:
		r[fieldKeyType] = ev.KeyType
		r[fieldKey] = ev.Key.Slice()
		r[fieldNext] = ev.NextCommitment.Slice()
		r[fieldPrevious] = ev.Previous.Slice()
		r[fieldWitnesses] = []any{}
		r[fieldThreshold] = 0
	case domain.EventDeactivation:
		r[fieldPrevious] = ev.Previous.Slice()
		r[fieldNextSig] = []byte{}
	}
	return r
}

// ContentBytes returns the canonical encoding that the event digest covers.
func ContentBytes(ev domain.Event) ([]byte, error) {
	return codec.Encode(content(ev, true))
}

// DeriveAID recomputes the identifier from inception content (pass 1).
func DeriveAID(ev domain.Event) (domain.AID, error) {
	b, err := codec.Encode(content(ev, false))
	if err != nil {
		return domain.AID{}, err
	}
	return domain.AID(digest.Sum(b)), nil
}

// ComputeDigest recomputes the event digest from the event's content fields.
func ComputeDigest(ev domain.Event) (domain.Digest, error) {
	b, err := ContentBytes(ev)
	if err != nil {
		return domain.Digest{}, err
	}
	return digest.Sum(b), nil
}

func keyHex(k domain.Ed25519Public) string { return hex.EncodeToString(k[:]) }
