package types

// EventType names the three key events a chain can hold.
type EventType string

const (
	EventInception    EventType = "inception"
	EventRotation     EventType = "rotation"
	EventDeactivation EventType = "deactivation"
)

// String returns the wire form of the event type.
func (t EventType) String() string { return string(t) }

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventInception, EventRotation, EventDeactivation:
		return true
	}
	return false
}

// Event is one entry of a key event log.
//
// Key and NextCommitment are unset for deactivation; Previous is unset for
// inception. NextSignature and NextKey are only carried by deactivation,
// which must prove control of both the current and the pre-committed key.
type Event struct {
	Version        uint64
	Type           EventType
	AID            AID
	Seq            uint64
	KeyType        string
	Key            Ed25519Public
	NextCommitment Digest
	Previous       Digest
	Timestamp      string

	Digest        Digest
	Signature     []byte
	NextSignature []byte
	NextKey       Ed25519Public
}

// KeyState is an immutable snapshot of a chain after its latest event.
type KeyState struct {
	AID            AID
	Seq            uint64
	CurrentKey     Ed25519Public
	NextCommitment Digest
	LastDigest     Digest
	Deactivated    bool
}

// Status returns a one-word description of the chain state.
func (s KeyState) Status() string {
	if s.Deactivated {
		return "deactivated"
	}
	return "active"
}
