// Package store persists the catalog, the entitlement ledger and the review
// set in SQLite. Uniqueness constraints carry the exactly-once guarantees for
// purchases and reviews; derived package fields (download counters, rating
// aggregate) are only ever written inside a transaction together with the
// write that changes them.
package store

import (
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

type Store struct {
	DB *sqlx.DB
}

func New(db *sqlx.DB) *Store { return &Store{DB: db} }

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS packages (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	category       TEXT NOT NULL,
	price          REAL NOT NULL CHECK (price >= 0),
	author_id      INTEGER NOT NULL REFERENCES users(id),
	features       TEXT NOT NULL DEFAULT '',
	requirements   TEXT NOT NULL DEFAULT '',
	thumbnail_key  TEXT NOT NULL,
	download_count INTEGER NOT NULL DEFAULT 0,
	average_rating REAL NOT NULL DEFAULT 0,
	review_count   INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS versions (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	package_id        INTEGER NOT NULL REFERENCES packages(id),
	version_number    TEXT NOT NULL,
	changelog         TEXT NOT NULL DEFAULT '',
	minecraft_version TEXT NOT NULL DEFAULT '',
	blob_key          TEXT NOT NULL,
	download_count    INTEGER NOT NULL DEFAULT 0,
	released_at       TIMESTAMP NOT NULL,
	UNIQUE (package_id, version_number)
);

CREATE TABLE IF NOT EXISTS purchases (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id      INTEGER NOT NULL REFERENCES users(id),
	package_id   INTEGER NOT NULL REFERENCES packages(id),
	purchased_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (user_id, package_id)
);

CREATE TABLE IF NOT EXISTS reviews (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id       INTEGER NOT NULL REFERENCES users(id),
	package_id    INTEGER NOT NULL REFERENCES packages(id),
	rating        INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment       TEXT NOT NULL,
	helpful_count INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (user_id, package_id)
);
`

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate() error {
	_, err := s.DB.Exec(schema)
	return err
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure
// involving the named column (e.g. "users.username").
func isUniqueViolation(err error, column string) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return strings.Contains(err.Error(), column)
	}
	return false
}
