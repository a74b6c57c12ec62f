package controller_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autonym/internal/digest"
	"autonym/internal/domain"
	"autonym/internal/keysource"
	"autonym/internal/protocol/kel"
	"autonym/internal/services/controller"
	"autonym/internal/store"
)

const pass = "correct horse"

type fixture struct {
	svc     *controller.Service
	log     *store.KELFileStore
	ring    *store.KeyringFileStore
	metrics *controller.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	home := t.TempDir()
	src, err := keysource.Deterministic([]byte(keysource.ReferenceSeed))
	require.NoError(t, err)

	f := fixture{
		log:     store.NewKELFileStore(home),
		ring:    store.NewKeyringFileStore(home, store.ScryptParams{N: 1 << 10, R: 8, P: 1}),
		metrics: controller.NewMetrics(prometheus.NewRegistry()),
	}
	f.svc = controller.New(f.log, f.ring, src, nil, f.metrics)

	at := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	f.svc.SetClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		at = at.Add(time.Hour)
		return at
	})
	return f
}

func TestController_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s0, phrase, err := f.svc.Incept(ctx, pass, "alice", false)
	require.NoError(t, err)
	assert.Empty(t, phrase)
	assert.Equal(t, uint64(0), s0.Seq)

	s1, err := f.svc.Rotate(ctx, pass, s0.AID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), s1.Seq)
	assert.Equal(t, s0.NextCommitment, digest.Commit(s1.CurrentKey))

	s2, err := f.svc.Deactivate(ctx, pass, s0.AID)
	require.NoError(t, err)
	assert.True(t, s2.Deactivated)

	_, err = f.svc.Rotate(ctx, pass, s0.AID)
	require.ErrorIs(t, err, domain.ErrChainTerminated)
	_, err = f.svc.Deactivate(ctx, pass, s0.AID)
	require.ErrorIs(t, err, domain.ErrChainTerminated)

	events, err := f.svc.Events(ctx, s0.AID)
	require.NoError(t, err)
	replayed, err := kel.Replay(events)
	require.NoError(t, err)
	assert.Equal(t, s2, replayed)

	entry, ok, err := f.ring.LoadEntry(pass, s0.AID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", entry.Label)
	assert.Equal(t, domain.Ed25519Private{}, entry.Current)
	assert.Equal(t, domain.Ed25519Private{}, entry.Next)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Events.WithLabelValues("inception")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Events.WithLabelValues("rotation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Events.WithLabelValues("deactivation")))
}

func TestController_StateSurvivesRestart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s0, _, err := f.svc.Incept(ctx, pass, "", false)
	require.NoError(t, err)
	s1, err := f.svc.Rotate(ctx, pass, s0.AID)
	require.NoError(t, err)

	src, err := keysource.Deterministic([]byte(keysource.ReferenceSeed))
	require.NoError(t, err)
	fresh := controller.New(f.log, f.ring, src, nil, nil)
	got, err := fresh.State(ctx, s0.AID)
	require.NoError(t, err)
	assert.Equal(t, s1, got)

	s2, err := fresh.Rotate(ctx, pass, s0.AID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), s2.Seq)
}

func TestController_RecoveryPhrase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s0, phrase, err := f.svc.Incept(ctx, pass, "bob", true)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(phrase), 24)

	s1, err := f.svc.Rotate(ctx, pass, s0.AID)
	require.NoError(t, err)

	// The phrase alone regenerates the key sequence.
	rec, err := keysource.Recovery(phrase)
	require.NoError(t, err)
	_, k1, err := rec.KeyPair(1)
	require.NoError(t, err)
	_, k2, err := rec.KeyPair(2)
	require.NoError(t, err)
	assert.Equal(t, k1, s1.CurrentKey)
	assert.Equal(t, digest.Commit(k2), s1.NextCommitment)
}

func TestController_IngestForeignLog(t *testing.T) {
	a := newFixture(t)
	b := newFixture(t)
	ctx := context.Background()

	s0, _, err := a.svc.Incept(ctx, pass, "", false)
	require.NoError(t, err)
	_, err = a.svc.Rotate(ctx, pass, s0.AID)
	require.NoError(t, err)
	_, err = a.svc.Deactivate(ctx, pass, s0.AID)
	require.NoError(t, err)
	events, err := a.svc.Events(ctx, s0.AID)
	require.NoError(t, err)

	_, err = b.svc.Ingest(ctx, events[2])
	require.ErrorIs(t, err, domain.ErrSequenceGap)
	_, err = b.svc.Ingest(ctx, events[0])
	require.NoError(t, err)
	_, err = b.svc.Ingest(ctx, events[2])
	require.ErrorIs(t, err, domain.ErrSequenceGap)
	assert.Equal(t, 2.0, testutil.ToFloat64(b.metrics.Rejected.WithLabelValues("sequence_gap")))

	tampered := events[1]
	tampered.Timestamp = "2026-02-16T00:00:00Z"
	_, err = b.svc.Ingest(ctx, tampered)
	require.ErrorIs(t, err, domain.ErrDigestMismatch)
	assert.Equal(t, 1.0, testutil.ToFloat64(b.metrics.Rejected.WithLabelValues("digest_mismatch")))

	_, err = b.svc.Ingest(ctx, events[1])
	require.NoError(t, err)
	final, err := b.svc.Ingest(ctx, events[2])
	require.NoError(t, err)
	assert.True(t, final.Deactivated)

	_, err = b.svc.Ingest(ctx, events[2])
	require.ErrorIs(t, err, domain.ErrChainTerminated)

	// b never held the keys.
	_, err = b.svc.Rotate(ctx, pass, s0.AID)
	require.ErrorIs(t, err, controller.ErrNotControlled)
}

func TestController_ConcurrentRotationsAreSerialized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s0, _, err := f.svc.Incept(ctx, pass, "", false)
	require.NoError(t, err)

	const n = 4
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Rotate(ctx, pass, s0.AID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	events, err := f.log.Events(ctx, s0.AID)
	require.NoError(t, err)
	require.Len(t, events, n+1)
	state, err := kel.Replay(events)
	require.NoError(t, err)
	assert.Equal(t, uint64(n), state.Seq)
}

func TestController_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.State(ctx, domain.AID{7})
	require.ErrorIs(t, err, controller.ErrUnknownIdentifier)
	_, err = f.svc.Events(ctx, domain.AID{7})
	require.ErrorIs(t, err, controller.ErrUnknownIdentifier)

	s0, _, err := f.svc.Incept(ctx, pass, "", false)
	require.NoError(t, err)

	_, err = f.svc.Rotate(ctx, "wrong", s0.AID)
	require.ErrorIs(t, err, store.ErrWrongPassphrase)

	_, err = f.svc.Rotate(ctx, pass, domain.AID{7})
	require.ErrorIs(t, err, controller.ErrNotControlled)
}

type fullLog struct {
	*store.KELFileStore
}

func (fullLog) Append(context.Context, domain.Event) error { return errors.New("disk full") }

func TestController_InceptAppendFailureLeavesNoKeys(t *testing.T) {
	home := t.TempDir()
	src, err := keysource.Deterministic([]byte(keysource.ReferenceSeed))
	require.NoError(t, err)
	ring := store.NewKeyringFileStore(home, store.ScryptParams{N: 1 << 10, R: 8, P: 1})
	log := fullLog{store.NewKELFileStore(home)}
	svc := controller.New(log, ring, src, nil, controller.NewMetrics(prometheus.NewRegistry()))

	_, _, err = svc.Incept(context.Background(), pass, "alice", false)
	require.ErrorContains(t, err, "disk full")

	entries, err := ring.ListEntries(pass)
	require.NoError(t, err)
	assert.Empty(t, entries)

	ids, err := log.Identifiers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
