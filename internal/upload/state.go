package upload

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateDB tracks which payload files have been successfully sent so repeated
// runs skip them.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sent_files (
		path          TEXT PRIMARY KEY,
		size          INTEGER NOT NULL,
		hash          TEXT NOT NULL,
		days_produced INTEGER NOT NULL DEFAULT 0,
		sent_at       TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// IsSent checks if a file has already been sent with the same size and hash.
func (s *StateDB) IsSent(relPath string, size int64, hash string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM sent_files WHERE path = ? AND size = ? AND hash = ?`,
		relPath, size, hash,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkSent records that a file was successfully sent and how many daily
// records the server produced from it.
func (s *StateDB) MarkSent(relPath string, size int64, hash string, daysProduced int) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO sent_files (path, size, hash, days_produced) VALUES (?, ?, ?, ?)`,
		relPath, size, hash, daysProduced,
	)
	return err
}

// TotalDaysSent sums the daily records the server has produced from every
// file sent so far.
func (s *StateDB) TotalDaysSent() (int, error) {
	var total int
	err := s.db.QueryRow(`SELECT COALESCE(SUM(days_produced), 0) FROM sent_files`).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
