package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"autonym/internal/crypto"
	"autonym/internal/domain"
	"autonym/internal/keysource"
	"autonym/internal/protocol/kel"
)

var (
	// ErrUnknownIdentifier is returned when no log is stored for an identifier.
	ErrUnknownIdentifier = errors.New("unknown identifier")
	// ErrNotControlled is returned when the keyring holds no keys for an identifier.
	ErrNotControlled = errors.New("identifier is not controlled by this keyring")
)

// Service is the chain arena. It implements domain.ControllerService.
type Service struct {
	log     domain.KeyEventLog
	ring    domain.Keyring
	keys    domain.KeySource
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time

	mu     sync.Mutex
	chains map[domain.AID]*chain
}

// chain serializes writers of one identifier and caches its latest state.
type chain struct {
	mu    sync.Mutex
	state *domain.KeyState
}

// New returns a controller over log and ring. keys supplies key pairs for
// identifiers incepted without a recovery phrase. A nil logger discards
// output; nil metrics are created unregistered.
func New(
	log domain.KeyEventLog,
	ring domain.Keyring,
	keys domain.KeySource,
	logger *slog.Logger,
	metrics *Metrics,
) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Service{
		log:     log,
		ring:    ring,
		keys:    keys,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
		chains:  make(map[domain.AID]*chain),
	}
}

// SetClock replaces the time source used for event timestamps.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Incept creates a new identifier. With recovery set, its keys are derived
// from a fresh recovery phrase, which is returned once and also sealed in
// the keyring.
func (s *Service) Incept(ctx context.Context, passphrase, label string, recovery bool) (domain.KeyState, string, error) {
	src, phrase, release, err := s.newSource(recovery)
	if err != nil {
		return domain.KeyState{}, "", err
	}
	defer release()

	currentPriv, _, err := src.KeyPair(0)
	if err != nil {
		return domain.KeyState{}, "", fmt.Errorf("current key: %w", err)
	}
	nextPriv, nextPub, err := src.KeyPair(1)
	if err != nil {
		return domain.KeyState{}, "", fmt.Errorf("next key: %w", err)
	}

	signer := crypto.NewKeySigner(currentPriv)
	defer signer.Close()

	ev, _, err := kel.BuildInception(signer, nextPub, s.now())
	if err != nil {
		return domain.KeyState{}, "", err
	}

	c := s.chain(ev.AID)
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := domain.KeyringEntry{
		Label:     label,
		AID:       ev.AID,
		Current:   currentPriv,
		Next:      nextPriv,
		Recovery:  phrase,
		NextIndex: 2,
	}
	if err := s.ring.SaveEntry(passphrase, entry); err != nil {
		return domain.KeyState{}, "", fmt.Errorf("save keys: %w", err)
	}

	state, err := s.accept(ctx, c, ev)
	if err != nil {
		if derr := s.ring.DeleteEntry(passphrase, ev.AID); derr != nil {
			s.logger.Error("remove keyring entry failed", "aid", ev.AID.String(), "error", derr)
		}
		return domain.KeyState{}, "", err
	}
	return state, phrase, nil
}

// Rotate replaces the current key of a controlled identifier with its
// pre-committed next key and commits to a freshly drawn one.
func (s *Service) Rotate(ctx context.Context, passphrase string, aid domain.AID) (domain.KeyState, error) {
	c := s.chain(aid)
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, state, err := s.controlled(ctx, c, passphrase, aid)
	if err != nil {
		return domain.KeyState{}, err
	}

	src, release, err := s.sourceFor(entry)
	if err != nil {
		return domain.KeyState{}, err
	}
	defer release()
	newNextPriv, newNextPub, err := src.KeyPair(entry.NextIndex)
	if err != nil {
		return domain.KeyState{}, fmt.Errorf("next key: %w", err)
	}

	outgoing := crypto.NewKeySigner(entry.Current)
	defer outgoing.Close()

	ev, _, err := kel.BuildRotation(state, outgoing, entry.Next.Public(), newNextPub, s.now())
	if err != nil {
		return domain.KeyState{}, err
	}

	updated := entry
	updated.Current = entry.Next
	updated.Next = newNextPriv
	updated.NextIndex = entry.NextIndex + 1
	return s.acceptWithKeys(ctx, c, passphrase, ev, entry, updated)
}

// Deactivate terminates a controlled identifier with a dual-signed event.
func (s *Service) Deactivate(ctx context.Context, passphrase string, aid domain.AID) (domain.KeyState, error) {
	c := s.chain(aid)
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, state, err := s.controlled(ctx, c, passphrase, aid)
	if err != nil {
		return domain.KeyState{}, err
	}

	current := crypto.NewKeySigner(entry.Current)
	defer current.Close()
	next := crypto.NewKeySigner(entry.Next)
	defer next.Close()

	ev, _, err := kel.BuildDeactivation(state, current, next, s.now())
	if err != nil {
		return domain.KeyState{}, err
	}

	retired := entry
	retired.Current = domain.Ed25519Private{}
	retired.Next = domain.Ed25519Private{}
	return s.acceptWithKeys(ctx, c, passphrase, ev, entry, retired)
}

// Ingest validates an event received from elsewhere and appends it to the
// identifier's log.
func (s *Service) Ingest(ctx context.Context, ev domain.Event) (domain.KeyState, error) {
	c := s.chain(ev.AID)
	c.mu.Lock()
	defer c.mu.Unlock()

	return s.accept(ctx, c, ev)
}

// State returns the latest state of aid, replaying its log on first use.
func (s *Service) State(ctx context.Context, aid domain.AID) (domain.KeyState, error) {
	c := s.chain(aid)
	c.mu.Lock()
	defer c.mu.Unlock()

	prior, err := s.load(ctx, c, aid)
	if err != nil {
		return domain.KeyState{}, err
	}
	if prior == nil {
		return domain.KeyState{}, fmt.Errorf("%w: %s", ErrUnknownIdentifier, aid)
	}
	return *prior, nil
}

// Events returns the stored log of aid.
func (s *Service) Events(ctx context.Context, aid domain.AID) ([]domain.Event, error) {
	events, err := s.log.Events(ctx, aid)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIdentifier, aid)
	}
	return events, nil
}

// chain returns the arena slot for aid, creating it on first use.
func (s *Service) chain(aid domain.AID) *chain {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chains[aid]
	if !ok {
		c = &chain{}
		s.chains[aid] = c
	}
	return c
}

// load returns the cached state of c, replaying the stored log if needed.
// A nil state means no events are stored. The caller holds c.mu.
func (s *Service) load(ctx context.Context, c *chain, aid domain.AID) (*domain.KeyState, error) {
	if c.state != nil {
		return c.state, nil
	}
	events, err := s.log.Events(ctx, aid)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	state, err := kel.Replay(events)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", aid, err)
	}
	c.state = &state
	return c.state, nil
}

// accept validates ev against the chain and appends it. The caller holds c.mu.
func (s *Service) accept(ctx context.Context, c *chain, ev domain.Event) (domain.KeyState, error) {
	next, err := s.validate(ctx, c, ev)
	if err != nil {
		return domain.KeyState{}, err
	}
	if err := s.log.Append(ctx, ev); err != nil {
		s.metrics.rejected(err)
		return domain.KeyState{}, fmt.Errorf("append %s seq %d: %w", ev.AID, ev.Seq, err)
	}
	s.commit(c, ev, next)
	return next, nil
}

// acceptWithKeys is accept for events that change the keyring. The new
// entry is sealed before the append and the old one restored if the append
// fails.
func (s *Service) acceptWithKeys(
	ctx context.Context,
	c *chain,
	passphrase string,
	ev domain.Event,
	old, updated domain.KeyringEntry,
) (domain.KeyState, error) {
	next, err := s.validate(ctx, c, ev)
	if err != nil {
		return domain.KeyState{}, err
	}
	if err := s.ring.SaveEntry(passphrase, updated); err != nil {
		return domain.KeyState{}, fmt.Errorf("save keys: %w", err)
	}
	if err := s.log.Append(ctx, ev); err != nil {
		s.metrics.rejected(err)
		if rerr := s.ring.SaveEntry(passphrase, old); rerr != nil {
			s.logger.Error("restore keyring entry failed", "aid", ev.AID.String(), "error", rerr)
		}
		return domain.KeyState{}, fmt.Errorf("append %s seq %d: %w", ev.AID, ev.Seq, err)
	}
	s.commit(c, ev, next)
	return next, nil
}

func (s *Service) validate(ctx context.Context, c *chain, ev domain.Event) (domain.KeyState, error) {
	prior, err := s.load(ctx, c, ev.AID)
	if err != nil {
		return domain.KeyState{}, err
	}
	next, err := kel.Validate(ev, prior)
	if err != nil {
		s.metrics.rejected(err)
		s.logger.Warn("event rejected",
			"aid", ev.AID.String(),
			"seq", ev.Seq,
			"type", ev.Type.String(),
			"error", err,
		)
		return domain.KeyState{}, err
	}
	return next, nil
}

func (s *Service) commit(c *chain, ev domain.Event, next domain.KeyState) {
	c.state = &next
	s.metrics.accepted(ev.Type)
	s.logger.Info("event accepted",
		"aid", ev.AID.String(),
		"seq", ev.Seq,
		"type", ev.Type.String(),
		"status", next.Status(),
	)
}

// controlled loads the keyring entry and current state of aid. The caller
// holds c.mu.
func (s *Service) controlled(ctx context.Context, c *chain, passphrase string, aid domain.AID) (domain.KeyringEntry, domain.KeyState, error) {
	entry, ok, err := s.ring.LoadEntry(passphrase, aid)
	if err != nil {
		return domain.KeyringEntry{}, domain.KeyState{}, err
	}
	if !ok {
		return domain.KeyringEntry{}, domain.KeyState{}, fmt.Errorf("%w: %s", ErrNotControlled, aid)
	}
	state, err := s.load(ctx, c, aid)
	if err != nil {
		return domain.KeyringEntry{}, domain.KeyState{}, err
	}
	if state == nil {
		return domain.KeyringEntry{}, domain.KeyState{}, fmt.Errorf("%w: %s", ErrUnknownIdentifier, aid)
	}
	if state.Deactivated {
		return domain.KeyringEntry{}, domain.KeyState{}, domain.ErrChainTerminated
	}
	if entry.Current.Public() != state.CurrentKey {
		pub := entry.Current.Public()
		return domain.KeyringEntry{}, domain.KeyState{}, domain.Mismatch(domain.ErrSignatureInvalid, "keyring current key",
			crypto.Fingerprint(state.CurrentKey[:]), crypto.Fingerprint(pub[:]))
	}
	return entry, *state, nil
}

// newSource returns the key source for a new identifier and, when recovery
// is requested, the phrase it derives from. release wipes a derived source.
func (s *Service) newSource(recovery bool) (src domain.KeySource, phrase string, release func(), err error) {
	if !recovery {
		return s.keys, "", func() {}, nil
	}
	phrase, err = keysource.NewMnemonic()
	if err != nil {
		return nil, "", nil, fmt.Errorf("recovery phrase: %w", err)
	}
	seeded, err := keysource.Recovery(phrase)
	if err != nil {
		return nil, "", nil, err
	}
	return seeded, phrase, seeded.Close, nil
}

// sourceFor returns the key source an identifier's keys come from.
func (s *Service) sourceFor(entry domain.KeyringEntry) (domain.KeySource, func(), error) {
	if entry.Recovery == "" {
		return s.keys, func() {}, nil
	}
	seeded, err := keysource.Recovery(entry.Recovery)
	if err != nil {
		return nil, nil, err
	}
	return seeded, seeded.Close, nil
}

// Compile-time assertion that Service implements domain.ControllerService.
var _ domain.ControllerService = (*Service)(nil)
