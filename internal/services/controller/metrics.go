package controller

import (
	"github.com/prometheus/client_golang/prometheus"

	"autonym/internal/domain"
	"autonym/internal/protocol/kel"
)

// Metrics counts accepted and rejected key events.
type Metrics struct {
	Events   *prometheus.CounterVec
	Rejected *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg when it is not
// nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autonym",
			Name:      "events_total",
			Help:      "Key events accepted into a log, by event type.",
		}, []string{"type"}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autonym",
			Name:      "events_rejected_total",
			Help:      "Key events refused by validation or the store, by error kind.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.Events, m.Rejected)
	}
	return m
}

func (m *Metrics) accepted(t domain.EventType) {
	m.Events.WithLabelValues(t.String()).Inc()
}

func (m *Metrics) rejected(err error) {
	m.Rejected.WithLabelValues(kindLabel(err)).Inc()
}

// kindLabel maps an error to a bounded label value.
func kindLabel(err error) string {
	kind := kel.ErrorKind(err)
	if kind == nil {
		return "other"
	}
	return labels[kind]
}

var labels = map[error]string{
	domain.ErrEncoding:              "encoding",
	domain.ErrMalformedEvent:        "malformed",
	domain.ErrDigestMismatch:        "digest_mismatch",
	domain.ErrSequenceGap:           "sequence_gap",
	domain.ErrChainLinkBroken:       "chain_link_broken",
	domain.ErrSignatureInvalid:      "signature_invalid",
	domain.ErrPreRotationMismatch:   "pre_rotation_mismatch",
	domain.ErrDualSignatureRequired: "dual_signature_required",
	domain.ErrChainTerminated:       "chain_terminated",
}
