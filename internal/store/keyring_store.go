package store

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"sync"

	"autonym/internal/domain"
	"autonym/internal/util/memzero"
)

const keyringFile = "keyring.enc"

// KeyringFileStore keeps every keyring entry in one passphrase-sealed file.
type KeyringFileStore struct {
	path   string
	params ScryptParams
	mu     sync.Mutex
}

// NewKeyringFileStore returns a keyring rooted at home that seals with params.
func NewKeyringFileStore(home string, params ScryptParams) *KeyringFileStore {
	return &KeyringFileStore{path: filepath.Join(home, keyringFile), params: params}
}

// SaveEntry adds or replaces the entry for entry.AID and reseals the file.
func (s *KeyringFileStore) SaveEntry(passphrase string, entry domain.KeyringEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(passphrase)
	if err != nil {
		return err
	}
	entries[entry.AID.String()] = entry
	return s.store(passphrase, entries)
}

// DeleteEntry removes the entry for aid. Removing an absent entry is not an
// error.
func (s *KeyringFileStore) DeleteEntry(passphrase string, aid domain.AID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(passphrase)
	if err != nil {
		return err
	}
	if _, ok := entries[aid.String()]; !ok {
		return nil
	}
	delete(entries, aid.String())
	return s.store(passphrase, entries)
}

// store seals entries and replaces the keyring file. The caller holds s.mu.
func (s *KeyringFileStore) store(passphrase string, entries map[string]domain.KeyringEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	defer memzero.Zero(raw)

	blob, err := seal(passphrase, raw, s.params)
	if err != nil {
		return err
	}
	return writeFile(s.path, blob)
}

// LoadEntry returns the entry for aid, if any.
func (s *KeyringFileStore) LoadEntry(passphrase string, aid domain.AID) (domain.KeyringEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(passphrase)
	if err != nil {
		return domain.KeyringEntry{}, false, err
	}
	e, ok := entries[aid.String()]
	return e, ok, nil
}

// ListEntries returns all entries ordered by label, then identifier.
func (s *KeyringFileStore) ListEntries(passphrase string) ([]domain.KeyringEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(passphrase)
	if err != nil {
		return nil, err
	}
	out := make([]domain.KeyringEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].AID.String() < out[j].AID.String()
	})
	return out, nil
}

// load returns the decrypted entries; a missing file is an empty keyring.
func (s *KeyringFileStore) load(passphrase string) (map[string]domain.KeyringEntry, error) {
	entries := make(map[string]domain.KeyringEntry)
	blob, err := readFile(s.path)
	if err != nil || blob == nil {
		return entries, err
	}
	raw, err := unseal(passphrase, blob)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(raw)
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Compile-time assertion that KeyringFileStore implements domain.Keyring.
var _ domain.Keyring = (*KeyringFileStore)(nil)
