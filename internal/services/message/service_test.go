package message_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autonym/internal/domain"
	"autonym/internal/keysource"
	"autonym/internal/services/controller"
	"autonym/internal/services/message"
	"autonym/internal/store"
)

const pass = "pass"

func setup(t *testing.T) (*controller.Service, *message.Service, *message.Metrics) {
	t.Helper()
	home := t.TempDir()
	ring := store.NewKeyringFileStore(home, store.ScryptParams{N: 1 << 10, R: 8, P: 1})
	ctl := controller.New(store.NewKELFileStore(home), ring, keysource.NewRandom(nil), nil, nil)
	m := message.NewMetrics(prometheus.NewRegistry())
	return ctl, message.New(ctl, ring, nil, m), m
}

func incept(t *testing.T, ctl *controller.Service, label string) domain.AID {
	t.Helper()
	s, _, err := ctl.Incept(context.Background(), pass, label, false)
	require.NoError(t, err)
	return s.AID
}

func TestMessage_SealOpen(t *testing.T) {
	ctl, svc, m := setup(t)
	ctx := context.Background()
	alice := incept(t, ctl, "alice")
	bob := incept(t, ctl, "bob")

	env, err := svc.Seal(ctx, alice, bob, []byte("hi bob"))
	require.NoError(t, err)
	assert.Equal(t, alice, env.From)
	assert.Equal(t, bob, env.To)

	pt, err := svc.Open(ctx, pass, bob, env)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi bob"), pt)

	_, err = svc.Open(ctx, pass, alice, env)
	require.ErrorIs(t, err, domain.ErrAuthenticationFailed)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Envelopes.WithLabelValues("seal", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Envelopes.WithLabelValues("open", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Envelopes.WithLabelValues("open", "error")))
}

func TestMessage_FollowsRotation(t *testing.T) {
	ctl, svc, _ := setup(t)
	ctx := context.Background()
	alice := incept(t, ctl, "alice")
	bob := incept(t, ctl, "bob")

	old, err := svc.Seal(ctx, alice, bob, []byte("before"))
	require.NoError(t, err)

	_, err = ctl.Rotate(ctx, pass, bob)
	require.NoError(t, err)

	env, err := svc.Seal(ctx, alice, bob, []byte("after"))
	require.NoError(t, err)
	pt, err := svc.Open(ctx, pass, bob, env)
	require.NoError(t, err)
	assert.Equal(t, []byte("after"), pt)

	// Envelopes sealed to a superseded key no longer open.
	_, err = svc.Open(ctx, pass, bob, old)
	require.ErrorIs(t, err, domain.ErrAuthenticationFailed)
}

func TestMessage_Tampered(t *testing.T) {
	ctl, svc, _ := setup(t)
	ctx := context.Background()
	alice := incept(t, ctl, "alice")
	bob := incept(t, ctl, "bob")

	env, err := svc.Seal(ctx, alice, bob, []byte("hi"))
	require.NoError(t, err)
	env.Timestamp = "1999-01-01T00:00:00Z"

	_, err = svc.Open(ctx, pass, bob, env)
	require.ErrorIs(t, err, domain.ErrAuthenticationFailed)
}

func TestMessage_RecipientState(t *testing.T) {
	ctl, svc, _ := setup(t)
	ctx := context.Background()
	alice := incept(t, ctl, "alice")
	bob := incept(t, ctl, "bob")

	_, err := svc.Seal(ctx, alice, domain.AID{9}, []byte("x"))
	require.ErrorIs(t, err, controller.ErrUnknownIdentifier)

	_, err = ctl.Deactivate(ctx, pass, bob)
	require.NoError(t, err)
	_, err = svc.Seal(ctx, alice, bob, []byte("x"))
	require.ErrorIs(t, err, domain.ErrChainTerminated)
}

func TestMessage_NoKeys(t *testing.T) {
	ctl, svc, _ := setup(t)
	ctx := context.Background()
	alice := incept(t, ctl, "alice")

	_, err := svc.Open(ctx, pass, domain.AID{9}, domain.Envelope{To: domain.AID{9}})
	require.ErrorIs(t, err, message.ErrNoKeys)

	_, err = ctl.Deactivate(ctx, pass, alice)
	require.NoError(t, err)
	_, err = svc.Open(ctx, pass, alice, domain.Envelope{To: alice})
	require.ErrorIs(t, err, message.ErrNoKeys)
}
