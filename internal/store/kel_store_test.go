package store_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autonym/internal/crypto"
	"autonym/internal/domain"
	"autonym/internal/keysource"
	"autonym/internal/protocol/kel"
	"autonym/internal/store"
)

func referenceEvents(t *testing.T, base uint32) []domain.Event {
	t.Helper()
	src, err := keysource.Deterministic([]byte(keysource.ReferenceSeed))
	require.NoError(t, err)
	k := make([]*crypto.KeySigner, 3)
	for i := range k {
		priv, _, err := src.KeyPair(base + uint32(i))
		require.NoError(t, err)
		k[i] = crypto.NewKeySigner(priv)
	}

	at := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	icp, s0, err := kel.BuildInception(k[0], k[1].PublicKey(), at)
	require.NoError(t, err)
	rot, s1, err := kel.BuildRotation(s0, k[0], k[1].PublicKey(), k[2].PublicKey(), at.Add(6*time.Hour))
	require.NoError(t, err)
	dea, _, err := kel.BuildDeactivation(s1, k[1], k[2], at.Add(12*time.Hour))
	require.NoError(t, err)
	return []domain.Event{icp, rot, dea}
}

func logStores(t *testing.T) map[string]domain.KeyEventLog {
	t.Helper()
	sq, err := store.OpenKELSQLite(filepath.Join(t.TempDir(), "kel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })

	return map[string]domain.KeyEventLog{
		"file":   store.NewKELFileStore(t.TempDir()),
		"sqlite": sq,
	}
}

func TestKeyEventLog_AppendAndReplay(t *testing.T) {
	for name, log := range logStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			events := referenceEvents(t, 0)
			for _, ev := range events {
				require.NoError(t, log.Append(ctx, ev))
			}

			got, err := log.Events(ctx, events[0].AID)
			require.NoError(t, err)
			require.Len(t, got, 3)
			for i := range events {
				assert.Equal(t, events[i].Digest, got[i].Digest)
			}

			state, err := kel.Replay(got)
			require.NoError(t, err)
			assert.True(t, state.Deactivated)
		})
	}
}

func TestKeyEventLog_RefusesCompetingEvent(t *testing.T) {
	for name, log := range logStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			events := referenceEvents(t, 0)
			require.NoError(t, log.Append(ctx, events[0]))
			require.NoError(t, log.Append(ctx, events[1]))

			err := log.Append(ctx, events[1])
			require.ErrorIs(t, err, store.ErrEventExists)

			got, err := log.Events(ctx, events[0].AID)
			require.NoError(t, err)
			assert.Len(t, got, 2)
		})
	}
}

func TestKeyEventLog_RefusesGap(t *testing.T) {
	for name, log := range logStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			events := referenceEvents(t, 0)
			require.NoError(t, log.Append(ctx, events[0]))

			err := log.Append(ctx, events[2])
			require.ErrorIs(t, err, domain.ErrSequenceGap)
		})
	}
}

func TestKeyEventLog_Identifiers(t *testing.T) {
	for name, log := range logStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			ids, err := log.Identifiers(ctx)
			require.NoError(t, err)
			assert.Empty(t, ids)

			a := referenceEvents(t, 0)
			b := referenceEvents(t, 10)
			require.NoError(t, log.Append(ctx, a[0]))
			require.NoError(t, log.Append(ctx, b[0]))
			require.NoError(t, log.Append(ctx, b[1]))

			ids, err = log.Identifiers(ctx)
			require.NoError(t, err)
			assert.ElementsMatch(t, []domain.AID{a[0].AID, b[0].AID}, ids)

			none, err := log.Events(ctx, domain.AID{1})
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestKELFileStore_ConcurrentAppendSingleWinner(t *testing.T) {
	log := store.NewKELFileStore(t.TempDir())
	ctx := context.Background()
	events := referenceEvents(t, 0)
	require.NoError(t, log.Append(ctx, events[0]))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if log.Append(ctx, events[1]) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestKELFileStore_CanceledContext(t *testing.T) {
	log := store.NewKELFileStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := log.Append(ctx, referenceEvents(t, 0)[0])
	require.ErrorIs(t, err, context.Canceled)
}
