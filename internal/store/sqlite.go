package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// migrations is an ordered list of SQL statements applied on startup.
// Each entry is idempotent (IF NOT EXISTS) so re-running is safe.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		target   TEXT NOT NULL,
		query    TEXT NOT NULL,
		outcome  TEXT NOT NULL,
		revision INTEGER NOT NULL DEFAULT 0,
		image    BLOB,
		taken_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_target_taken
		ON snapshots (target, taken_at DESC)`,
}

const snapshotColumns = `id, target, query, outcome, revision, image, taken_at`

// SQLiteStore implements Store using a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at path and runs
// migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite handles one writer at a time.

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	for _, stmt := range migrations {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("store: migration: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, rec *SnapshotRecord) error {
	if rec.TakenAt.IsZero() {
		rec.TakenAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (target, query, outcome, revision, image, taken_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Target, rec.Query, rec.Outcome, rec.Revision, rec.Image,
		rec.TakenAt.UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	rec.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, target string, limit int) ([]*SnapshotRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + snapshotColumns + ` FROM snapshots
		 ORDER BY taken_at DESC, id DESC LIMIT ?`
	args := []any{limit}
	if target != "" {
		query = `SELECT ` + snapshotColumns + ` FROM snapshots
		 WHERE target = ? ORDER BY taken_at DESC, id DESC LIMIT ?`
		args = []any{target, limit}
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []*SnapshotRecord
	for rows.Next() {
		rec, err := scanSnapshotRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) LatestSnapshot(ctx context.Context, target string) (*SnapshotRecord, error) {
	if target == "" {
		return scanSnapshot(s.db.QueryRowContext(ctx,
			`SELECT `+snapshotColumns+` FROM snapshots
			 ORDER BY taken_at DESC, id DESC LIMIT 1`))
	}
	return scanSnapshot(s.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots
		 WHERE target = ? ORDER BY taken_at DESC, id DESC LIMIT 1`,
		target))
}

func scanSnapshot(row *sql.Row) (*SnapshotRecord, error) {
	var rec SnapshotRecord
	var taken string
	if err := row.Scan(&rec.ID, &rec.Target, &rec.Query, &rec.Outcome, &rec.Revision, &rec.Image, &taken); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	rec.TakenAt, _ = time.Parse(time.RFC3339, taken)
	return &rec, nil
}

func scanSnapshotRows(rows *sql.Rows) (*SnapshotRecord, error) {
	var rec SnapshotRecord
	var taken string
	if err := rows.Scan(&rec.ID, &rec.Target, &rec.Query, &rec.Outcome, &rec.Revision, &rec.Image, &taken); err != nil {
		return nil, err
	}
	rec.TakenAt, _ = time.Parse(time.RFC3339, taken)
	return &rec, nil
}

var _ Store = (*SQLiteStore)(nil)
