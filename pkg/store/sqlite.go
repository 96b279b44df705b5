package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/planningalerts-scrapers/horizon-xml/pkg/record"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS data (
	council_reference TEXT,
	address           TEXT,
	description       TEXT,
	info_url          TEXT,
	comment_url       TEXT,
	date_scraped      TEXT,
	date_received     TEXT,
	UNIQUE (council_reference)
)`

const sqliteUpsert = `INSERT INTO data (
	council_reference, address, description, info_url, comment_url, date_scraped, date_received
) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (council_reference) DO UPDATE SET
	address = excluded.address,
	description = excluded.description,
	info_url = excluded.info_url,
	comment_url = excluded.comment_url,
	date_scraped = excluded.date_scraped,
	date_received = excluded.date_received`

// SQLite writes records into the "data" table used by morph.io scrapers.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create data table: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Upsert inserts the record or replaces the row with the same council_reference.
func (s *SQLite) Upsert(ctx context.Context, rec record.Record) error {
	_, err := s.db.ExecContext(ctx, sqliteUpsert,
		rec.CouncilReference,
		rec.Address,
		rec.Description,
		rec.InfoURL,
		rec.CommentURL,
		rec.DateScraped,
		rec.DateReceived,
	)
	observe(DriverSQLite, err)
	if err != nil {
		return fmt.Errorf("upsert %q: %w", rec.Key(), err)
	}
	return nil
}

// Count returns the number of stored rows.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM data").Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
