// Package history records resolution attempts in a local ledger so that
// past outcomes can be inspected after the fact. Ledger rows describe the
// resolution (mode, outcome, error kind, entry count) but never the build
// identifier or any key material.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"cask-go/internal/history/migrations"
)

// Resolution is one recorded resolution attempt.
type Resolution struct {
	ID         int64
	Mode       string
	Outcome    string
	ErrorKind  string
	AssetsPath string
	Entries    int64
	Algorithm  string
	StartedAt  time.Time
	FinishedAt time.Time
}

const (
	ModeDev       = "dev"
	ModeEncrypted = "encrypted"

	OutcomeResolved = "resolved"
	OutcomeFailed   = "failed"
)

// Store persists resolution records.
type Store interface {
	RecordResolution(rec Resolution) (int64, error)
	RecentResolutions(limit int) ([]*Resolution, error)
	Close() error
}

type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the ledger database at path and
// runs any pending schema migrations. Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := openConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating ledger: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func openConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return db, nil
}

func (s *SQLiteStore) RecordResolution(rec Resolution) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO resolutions (mode, outcome, error_kind, assets_path, entries, algorithm, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Mode, rec.Outcome, rec.ErrorKind, rec.AssetsPath, rec.Entries, rec.Algorithm,
		rec.StartedAt.UTC().Format(time.RFC3339Nano), rec.FinishedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("recording resolution: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading resolution id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) RecentResolutions(limit int) ([]*Resolution, error) {
	rows, err := s.db.Query(`
		SELECT id, mode, outcome, error_kind, assets_path, entries, algorithm, started_at, finished_at
		FROM resolutions
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing resolutions: %w", err)
	}
	defer rows.Close()

	var recs []*Resolution
	for rows.Next() {
		var rec Resolution
		var startedAt, finishedAt string
		if err := rows.Scan(&rec.ID, &rec.Mode, &rec.Outcome, &rec.ErrorKind,
			&rec.AssetsPath, &rec.Entries, &rec.Algorithm, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scanning resolution: %w", err)
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		if rec.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
			return nil, fmt.Errorf("parsing finished_at: %w", err)
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resolutions: %w", err)
	}
	return recs, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
