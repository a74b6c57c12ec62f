package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autonym/internal/domain"
	"autonym/internal/store"
)

var fastScrypt = store.ScryptParams{N: 1 << 10, R: 8, P: 1}

func TestKeyring_SaveLoad_OK(t *testing.T) {
	var ring domain.Keyring = store.NewKeyringFileStore(t.TempDir(), fastScrypt)

	entry := domain.KeyringEntry{
		Label:     "alice",
		AID:       domain.AID{1},
		Current:   domain.Ed25519Private{2},
		Next:      domain.Ed25519Private{3},
		NextIndex: 2,
	}
	require.NoError(t, ring.SaveEntry("pass", entry))

	got, ok, err := ring.LoadEntry("pass", entry.AID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry, got)

	_, ok, err = ring.LoadEntry("pass", domain.AID{9})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyring_WrongPassphrase_Fails(t *testing.T) {
	ring := store.NewKeyringFileStore(t.TempDir(), fastScrypt)
	require.NoError(t, ring.SaveEntry("correct", domain.KeyringEntry{AID: domain.AID{1}}))

	_, _, err := ring.LoadEntry("wrong", domain.AID{1})
	require.ErrorIs(t, err, store.ErrWrongPassphrase)

	err = ring.SaveEntry("wrong", domain.KeyringEntry{AID: domain.AID{2}})
	require.ErrorIs(t, err, store.ErrWrongPassphrase)
}

func TestKeyring_ListAndReplace(t *testing.T) {
	home := t.TempDir()
	ring := store.NewKeyringFileStore(home, fastScrypt)

	require.NoError(t, ring.SaveEntry("p", domain.KeyringEntry{Label: "b", AID: domain.AID{1}}))
	require.NoError(t, ring.SaveEntry("p", domain.KeyringEntry{Label: "a", AID: domain.AID{2}}))
	require.NoError(t, ring.SaveEntry("p", domain.KeyringEntry{Label: "c", AID: domain.AID{1}, NextIndex: 4}))

	// A second store over the same home sees the same sealed file.
	list, err := store.NewKeyringFileStore(home, fastScrypt).ListEntries("p")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Label)
	assert.Equal(t, "c", list[1].Label)
	assert.Equal(t, uint32(4), list[1].NextIndex)
}

func TestKeyring_EmptyHome(t *testing.T) {
	ring := store.NewKeyringFileStore(t.TempDir(), fastScrypt)
	list, err := ring.ListEntries("anything")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestKeyring_DeleteEntry(t *testing.T) {
	ring := store.NewKeyringFileStore(t.TempDir(), fastScrypt)
	require.NoError(t, ring.SaveEntry("p", domain.KeyringEntry{Label: "a", AID: domain.AID{1}}))
	require.NoError(t, ring.SaveEntry("p", domain.KeyringEntry{Label: "b", AID: domain.AID{2}}))

	require.NoError(t, ring.DeleteEntry("p", domain.AID{1}))
	require.NoError(t, ring.DeleteEntry("p", domain.AID{9}))

	_, ok, err := ring.LoadEntry("p", domain.AID{1})
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := ring.ListEntries("p")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AID{2}, entries[0].AID)

	require.ErrorIs(t, ring.DeleteEntry("wrong", domain.AID{2}), store.ErrWrongPassphrase)
}
