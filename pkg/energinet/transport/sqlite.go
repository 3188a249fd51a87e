package transport

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend stores cached responses in a single-table sqlite database.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (creating if needed) the cache database at path.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS responses (
			key        TEXT PRIMARY KEY,
			body       BLOB NOT NULL,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteBackend{db: db}, nil
}

// Get returns the cached body if present and younger than maxAge. Expired
// entries are deleted on read.
func (b *SQLiteBackend) Get(key string, maxAge time.Duration) ([]byte, bool) {
	var body []byte
	var createdAt int64
	err := b.db.QueryRow(
		`SELECT body, created_at FROM responses WHERE key = ?`, key,
	).Scan(&body, &createdAt)
	if err != nil {
		return nil, false
	}
	if time.Since(time.Unix(createdAt, 0)) > maxAge {
		b.db.Exec(`DELETE FROM responses WHERE key = ?`, key)
		return nil, false
	}
	return body, true
}

// Set upserts the body under the key, resetting its age.
func (b *SQLiteBackend) Set(key string, body []byte) error {
	_, err := b.db.Exec(
		`INSERT INTO responses (key, body, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body, created_at = excluded.created_at`,
		key, body, time.Now().Unix(),
	)
	return err
}

// Close closes the database.
func (b *SQLiteBackend) Close() error { return b.db.Close() }
