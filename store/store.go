// Package store persists summaries in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/use-agent/webdigest/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS summaries (
	id           TEXT PRIMARY KEY,
	website_link TEXT NOT NULL,
	result       TEXT NOT NULL,
	fingerprint  TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_summaries_created_at ON summaries(created_at);
CREATE INDEX IF NOT EXISTS idx_summaries_website_link ON summaries(website_link, created_at);
`

// timeLayout is fixed width so created_at text sorts chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const selectColumns = `SELECT id, website_link, result, fingerprint, created_at FROM summaries`

// DB is a SQLite-backed summary store.
type DB struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path, now: time.Now}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; also keeps ":memory:" a single database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	db.db = conn
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// Insert stores s. A missing ID or CreatedAt is filled in on s before the
// write. Errors are PERSISTENCE_FAILURE.
func (db *DB) Insert(ctx context.Context, s *models.PersistedSummary) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = db.now().UTC()
	}

	result, err := json.Marshal(s.Result)
	if err != nil {
		return models.NewDigestError(models.ErrCodePersistence, "failed to encode summary", err)
	}

	_, err = db.db.ExecContext(ctx,
		`INSERT INTO summaries (id, website_link, result, fingerprint, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.WebsiteLink, string(result), s.Fingerprint, s.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return models.NewDigestError(models.ErrCodePersistence, "failed to insert summary", err)
	}
	return nil
}

// FindAll returns every stored summary, oldest first.
func (db *DB) FindAll(ctx context.Context) ([]*models.PersistedSummary, error) {
	rows, err := db.db.QueryContext(ctx, selectColumns+` ORDER BY created_at, rowid`)
	if err != nil {
		return nil, models.NewDigestError(models.ErrCodePersistence, "failed to query summaries", err)
	}
	defer rows.Close()

	summaries := make([]*models.PersistedSummary, 0)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewDigestError(models.ErrCodePersistence, "failed to iterate summaries", err)
	}
	return summaries, nil
}

// FindLatest returns the newest summary of websiteLink, or nil when the
// link was never summarized.
func (db *DB) FindLatest(ctx context.Context, websiteLink string) (*models.PersistedSummary, error) {
	row := db.db.QueryRowContext(ctx,
		selectColumns+` WHERE website_link = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, websiteLink)
	s, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (*models.PersistedSummary, error) {
	var (
		s         models.PersistedSummary
		result    string
		createdAt string
	)
	if err := row.Scan(&s.ID, &s.WebsiteLink, &result, &s.Fingerprint, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, models.NewDigestError(models.ErrCodePersistence, "failed to scan summary", err)
	}
	if err := json.Unmarshal([]byte(result), &s.Result); err != nil {
		return nil, models.NewDigestError(models.ErrCodePersistence, "failed to decode summary "+s.ID, err)
	}
	var err error
	if s.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, models.NewDigestError(models.ErrCodePersistence, "failed to parse created_at of "+s.ID, err)
	}
	return &s, nil
}
