// Package database is the SQLite implementation of store.Store.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jredh-dev/foodshare/internal/store"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

var _ store.Store = (*DB)(nil)

// Rows are listed by rowid so that listings keep insertion order. Upserts
// go through ON CONFLICT DO UPDATE, which leaves the rowid alone.
const schema = `
CREATE TABLE IF NOT EXISTS donations (
	id          TEXT PRIMARY KEY,
	food_image  TEXT NOT NULL DEFAULT '',
	purpose     TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	phone       TEXT NOT NULL DEFAULT '',
	expiry_time TEXT NOT NULL DEFAULT '',
	target      TEXT NOT NULL,
	donor_id    TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'available',
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_donations_status ON donations(status);
CREATE INDEX IF NOT EXISTS idx_donations_donor_id ON donations(donor_id);

CREATE TABLE IF NOT EXISTS requests (
	id           TEXT PRIMARY KEY,
	donation_id  TEXT NOT NULL,
	recipient_id TEXT NOT NULL DEFAULT '',
	type         TEXT NOT NULL,
	status       TEXT NOT NULL,
	volunteer_id TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_requests_donation_id ON requests(donation_id);
CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(type, status);

CREATE TABLE IF NOT EXISTS volunteer_ratings (
	id           TEXT PRIMARY KEY,
	request_id   TEXT NOT NULL,
	volunteer_id TEXT NOT NULL,
	rating       INTEGER NOT NULL,
	created_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ratings_volunteer_id ON volunteer_ratings(volunteer_id);

CREATE TABLE IF NOT EXISTS volunteer_profiles (
	volunteer_id TEXT PRIMARY KEY,
	name         TEXT NOT NULL DEFAULT '',
	upi_id       TEXT NOT NULL DEFAULT '',
	credits      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS sponsors (
	id         TEXT PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	location   TEXT NOT NULL DEFAULT '',
	amount     TEXT NOT NULL DEFAULT '',
	screenshot TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
`

// Open creates or opens the SQLite database at path and applies the schema.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// One writer at a time; SQLite serializes anyway and this avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// View runs fn in a transaction that is always rolled back.
func (db *DB) View(ctx context.Context, fn func(store.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	return fn(&sqlTx{ctx: ctx, tx: tx})
}

// Update runs fn in a transaction and commits it if fn returns nil.
func (db *DB) Update(ctx context.Context, fn func(store.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(&sqlTx{ctx: ctx, tx: tx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// sqlTx implements store.Tx on a *sql.Tx.
type sqlTx struct {
	ctx context.Context
	tx  *sql.Tx
}

type scanner interface{ Scan(...interface{}) error }

func (t *sqlTx) exec(q string, args ...interface{}) error {
	_, err := t.tx.ExecContext(t.ctx, q, args...)
	return err
}

// query runs q and calls scan once per row.
func (t *sqlTx) query(q string, scan func(scanner) error, args ...interface{}) error {
	rows, err := t.tx.QueryContext(t.ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
