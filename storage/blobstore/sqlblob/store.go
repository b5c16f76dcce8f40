package sqlblob

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/sarvodaya/feedesk/core"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const schema = `CREATE TABLE IF NOT EXISTS blobs (
	name TEXT PRIMARY KEY,
	data TEXT NOT NULL
)`

// Store keeps every blob as one row of the `blobs` table.
type Store struct {
	db *sqlx.DB
}

var _ core.BlobStore = (*Store)(nil)

// Open connects to the database, waits for it to be ready and creates the `blobs` table if needed.
func Open(driver, dsn string) (*Store, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if driver == DriverSQLite {
		// single writer
		db.SetMaxOpenConns(1)
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "pinging database")
	}
	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating blobs table")
	}
	return &Store{db: db}, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func (s *Store) Get(key string) (string, bool, error) {
	var data string
	err := s.db.Get(&data, s.db.Rebind(`SELECT data FROM blobs WHERE name = ?`), key)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "selecting blob")
	}
	return data, true, nil
}

func (s *Store) Set(key, value string) error {
	q := s.db.Rebind(`INSERT INTO blobs (name, data) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET data = excluded.data`)
	_, err := s.db.Exec(q, key, value)
	return errors.Wrap(err, "upserting blob")
}

func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(s.db.Rebind(`DELETE FROM blobs WHERE name = ?`), key)
	return errors.Wrap(err, "deleting blob")
}

func (s *Store) Close() error {
	return s.db.Close()
}
