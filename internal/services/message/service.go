package message

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"autonym/internal/domain"
	"autonym/internal/protocol/e2e"
	"autonym/internal/util/memzero"
)

// ErrNoKeys is returned when the keyring holds no usable key for the
// receiving identifier.
var ErrNoKeys = errors.New("no private key for identifier")

// Metrics counts sealed and opened envelopes.
type Metrics struct {
	Envelopes *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg when it is not
// nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Envelopes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autonym",
			Name:      "envelopes_total",
			Help:      "Envelopes sealed or opened, by operation and result.",
		}, []string{"op", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Envelopes)
	}
	return m
}

func (m *Metrics) observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Envelopes.WithLabelValues(op, result).Inc()
}

// Service implements domain.MessageService.
type Service struct {
	states  domain.ControllerService
	ring    domain.Keyring
	logger  *slog.Logger
	metrics *Metrics
	rng     io.Reader
	now     func() time.Time
}

// New returns a message service resolving key state through states.
func New(states domain.ControllerService, ring domain.Keyring, logger *slog.Logger, metrics *Metrics) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Service{
		states:  states,
		ring:    ring,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// SetRandom replaces the randomness for ephemeral keys and nonces. A nil
// reader selects crypto/rand.
func (s *Service) SetRandom(r io.Reader) { s.rng = r }

// Seal encrypts plaintext from one identifier to another's current key.
func (s *Service) Seal(ctx context.Context, from, to domain.AID, plaintext []byte) (env domain.Envelope, err error) {
	defer func() { s.metrics.observe("seal", err) }()

	if _, err := s.states.State(ctx, from); err != nil {
		return domain.Envelope{}, fmt.Errorf("sender: %w", err)
	}
	recipient, err := s.states.State(ctx, to)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("recipient: %w", err)
	}
	if recipient.Deactivated {
		return domain.Envelope{}, fmt.Errorf("recipient: %w", domain.ErrChainTerminated)
	}

	rx, err := e2e.ExchangePublic(recipient.CurrentKey)
	if err != nil {
		return domain.Envelope{}, err
	}
	env, err = e2e.Seal(from, to, rx, plaintext, s.now(), s.rng)
	if err != nil {
		return domain.Envelope{}, err
	}
	s.logger.Debug("envelope sealed", "from", from.String(), "to", to.String(), "seq", recipient.Seq)
	return env, nil
}

// Open decrypts an envelope addressed to as with its current key from the
// keyring.
func (s *Service) Open(ctx context.Context, passphrase string, as domain.AID, env domain.Envelope) (pt []byte, err error) {
	defer func() { s.metrics.observe("open", err) }()

	if env.To != as {
		return nil, fmt.Errorf("%w: envelope is addressed to %s", domain.ErrAuthenticationFailed, env.To)
	}
	entry, ok, err := s.ring.LoadEntry(passphrase, as)
	if err != nil {
		return nil, err
	}
	if !ok || entry.Current == (domain.Ed25519Private{}) {
		return nil, fmt.Errorf("%w: %s", ErrNoKeys, as)
	}

	xpriv := e2e.ExchangePrivate(entry.Current)
	defer memzero.Zero(xpriv[:])
	memzero.Zero(entry.Current[:])
	memzero.Zero(entry.Next[:])

	pt, err = e2e.Open(env, xpriv)
	if err != nil {
		s.logger.Warn("envelope rejected", "from", env.From.String(), "to", as.String())
		return nil, err
	}
	return pt, nil
}

// Compile-time assertion that Service implements domain.MessageService.
var _ domain.MessageService = (*Service)(nil)
