package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"autonym/internal/codec"
	"autonym/internal/domain"
	"autonym/internal/protocol/kel"
)

const (
	kelDir = "kel"
	kelExt = ".cbor"
)

// KELFileStore keeps each identifier's log in its own file as a CBOR array
// of wire-encoded events.
type KELFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewKELFileStore returns a KELFileStore rooted at home.
func NewKELFileStore(home string) *KELFileStore {
	return &KELFileStore{dir: filepath.Join(home, kelDir)}
}

// Append stores ev after the last stored event of its identifier.
func (s *KELFileStore) Append(ctx context.Context, ev domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(ev.AID)
	raw, err := s.readRaw(path)
	if err != nil {
		return err
	}
	if err := checkNext(uint64(len(raw)), ev.Seq); err != nil {
		return err
	}

	b, err := kel.Encode(ev)
	if err != nil {
		return err
	}
	raw = append(raw, b)

	out, err := codec.EncodeList(raw)
	if err != nil {
		return err
	}
	return writeFile(path, out)
}

// Events returns the stored log of aid in sequence order. An unknown
// identifier yields an empty log.
func (s *KELFileStore) Events(ctx context.Context, aid domain.AID) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.readRaw(s.path(aid))
	if err != nil {
		return nil, err
	}
	out := make([]domain.Event, 0, len(raw))
	for i, b := range raw {
		ev, err := kel.Decode(b)
		if err != nil {
			return nil, fmt.Errorf("kel %s event %d: %w", aid, i, err)
		}
		out = append(out, ev)
	}
	return out, nil
}

// Identifiers lists every identifier with a stored log.
func (s *KELFileStore) Identifiers(ctx context.Context) ([]domain.AID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []domain.AID
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, kelExt) {
			continue
		}
		aid, err := domain.ParseAID(strings.TrimSuffix(name, kelExt))
		if err != nil {
			continue
		}
		out = append(out, aid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (s *KELFileStore) path(aid domain.AID) string {
	return filepath.Join(s.dir, aid.String()+kelExt)
}

func (s *KELFileStore) readRaw(path string) ([][]byte, error) {
	b, err := readFile(path)
	if err != nil || b == nil {
		return nil, err
	}
	var raw [][]byte
	if err := codec.Decode(b, &raw); err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return raw, nil
}

// checkNext requires seq to be the next free position after stored events.
func checkNext(stored, seq uint64) error {
	switch {
	case seq < stored:
		return fmt.Errorf("%w: seq %d", ErrEventExists, seq)
	case seq > stored:
		return domain.Mismatch(domain.ErrSequenceGap, "s", stored, seq)
	}
	return nil
}

// Compile-time assertion that KELFileStore implements domain.KeyEventLog.
var _ domain.KeyEventLog = (*KELFileStore)(nil)
