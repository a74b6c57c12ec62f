package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"autonym/internal/domain"
	"autonym/internal/protocol/kel"
)

// KELSQLiteStore keeps key event logs in a SQLite table keyed by
// (aid, seq).
type KELSQLiteStore struct {
	db *sql.DB
}

// OpenKELSQLite opens or creates the database at path.
func OpenKELSQLite(path string) (*KELSQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection serializes writers; SQLite allows a single writer anyway.
	db.SetMaxOpenConns(1)
	s, err := NewKELSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewKELSQLiteStore wraps an open database and creates the schema.
func NewKELSQLiteStore(db *sql.DB) (*KELSQLiteStore, error) {
	s := &KELSQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *KELSQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS key_events (
		aid TEXT NOT NULL,
		seq INTEGER NOT NULL,
		type TEXT NOT NULL,
		digest TEXT NOT NULL,
		body BLOB NOT NULL,
		UNIQUE (aid, seq)
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Close closes the underlying database.
func (s *KELSQLiteStore) Close() error { return s.db.Close() }

// Append stores ev after the last stored event of its identifier.
func (s *KELSQLiteStore) Append(ctx context.Context, ev domain.Event) error {
	body, err := kel.Encode(ev)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var stored uint64
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM key_events WHERE aid = ?`, ev.AID.String(),
	).Scan(&stored)
	if err != nil {
		return fmt.Errorf("count events: %w", err)
	}
	if err := checkNext(stored, ev.Seq); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO key_events (aid, seq, type, digest, body) VALUES (?, ?, ?, ?, ?)`,
		ev.AID.String(), int64(ev.Seq), ev.Type.String(), ev.Digest.String(), body,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: seq %d", ErrEventExists, ev.Seq)
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return tx.Commit()
}

// Events returns the stored log of aid in sequence order.
func (s *KELSQLiteStore) Events(ctx context.Context, aid domain.AID) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, body FROM key_events WHERE aid = ? ORDER BY seq`, aid.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Event
	for rows.Next() {
		var (
			seq  int64
			body []byte
		)
		if err := rows.Scan(&seq, &body); err != nil {
			return nil, err
		}
		ev, err := kel.Decode(body)
		if err != nil {
			return nil, fmt.Errorf("kel %s event %d: %w", aid, seq, err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Identifiers lists every identifier with a stored log.
func (s *KELSQLiteStore) Identifiers(ctx context.Context) ([]domain.AID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT aid FROM key_events ORDER BY aid`)
	if err != nil {
		return nil, fmt.Errorf("query identifiers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.AID
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		aid, err := domain.ParseAID(text)
		if err != nil {
			return nil, err
		}
		out = append(out, aid)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var target interface{ Code() int }
	if errors.As(err, &target) {
		// SQLITE_CONSTRAINT_UNIQUE
		return target.Code() == 2067
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Compile-time assertion that KELSQLiteStore implements domain.KeyEventLog.
var _ domain.KeyEventLog = (*KELSQLiteStore)(nil)
