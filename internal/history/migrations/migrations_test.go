package migrations

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUp(t *testing.T) {
	db := openTestDB(t)

	if err := Up(db); err != nil {
		t.Fatalf("Up() error = %v", err)
	}

	// The resolutions table must exist afterwards.
	var name string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'resolutions'").Scan(&name)
	if err != nil {
		t.Fatalf("resolutions table not found after migration: %v", err)
	}
}

func TestUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := Up(db); err != nil {
		t.Fatalf("first Up() error = %v", err)
	}
	if err := Up(db); err != nil {
		t.Fatalf("second Up() error = %v", err)
	}
}

func TestCheckStatus(t *testing.T) {
	db := openTestDB(t)

	if err := CheckStatus(db); err == nil {
		t.Error("CheckStatus() on fresh database expected error")
	}

	if err := Up(db); err != nil {
		t.Fatalf("Up() error = %v", err)
	}
	if err := CheckStatus(db); err != nil {
		t.Errorf("CheckStatus() after migration error = %v", err)
	}
}
