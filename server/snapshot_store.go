package server

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNoSnapshot = errors.New("server: no snapshot stored")

// SnapshotStore persists serialized screens and labels to SQLite;
// LoadLatest returns the most recent one. nettermd saves a snapshot on
// shutdown and does not load one at startup.
type SnapshotStore struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenSnapshotStore opens (and if needed initializes) the database at
// the given path.
func OpenSnapshotStore(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	taken_at   INTEGER NOT NULL,
	rows       INTEGER NOT NULL,
	cols       INTEGER NOT NULL,
	screen     BLOB NOT NULL,
	labels     BLOB NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SnapshotStore{db: db}, nil
}

// Save records one snapshot.
func (s *SnapshotStore) Save(rows, cols int, screen, labels []byte) error {
	if screen == nil {
		screen = []byte{}
	}
	if labels == nil {
		labels = []byte{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO snapshots (taken_at, rows, cols, screen, labels) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Unix(), rows, cols, screen, labels,
	)
	return err
}

// LoadLatest returns the most recent snapshot.
func (s *SnapshotStore) LoadLatest() (rows, cols int, screen, labels []byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.db.QueryRow(
		`SELECT rows, cols, screen, labels FROM snapshots ORDER BY id DESC LIMIT 1`)
	err = row.Scan(&rows, &cols, &screen, &labels)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNoSnapshot
	}
	return
}

// Prune keeps only the newest n snapshots.
func (s *SnapshotStore) Prune(keep int) error {
	if keep < 0 {
		keep = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT ?)`,
		keep,
	)
	return err
}

// Close closes the database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
