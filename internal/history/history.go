// Package history keeps a local record of submission runs so past
// outcomes can be reviewed without the portal.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// Run is one completed submission attempt.
type Run struct {
	ID              int64
	StartedAt       time.Time
	CSVPath         string
	EditMode        bool
	DryRun          bool
	ActiveSubmitted int
	OffSubmitted    int
	Failed          int
}

// Failure is one rejected date within a run.
type Failure struct {
	Date   string
	Reason string
}

type Store struct {
	db *sql.DB
}

// DefaultPath returns the database location under ~/.local/share/logbook.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "share", "logbook")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (creating if needed) the history database at path and
// applies the schema.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		path,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	b, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	if _, err := db.Exec(string(b)); err != nil {
		return errors.Join(fmt.Errorf("schema apply failed"), err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one run with its failures and returns the run ID.
func (s *Store) Record(ctx context.Context, run Run, failures []Failure) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, csv_path, edit_mode, dry_run, active_submitted, off_submitted, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.CSVPath,
		boolToInt(run.EditMode),
		boolToInt(run.DryRun),
		run.ActiveSubmitted,
		run.OffSubmitted,
		len(failures),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, f := range failures {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO failures (run_id, date, reason) VALUES (?, ?, ?)`,
			id, f.Date, f.Reason,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, csv_path, edit_mode, dry_run, active_submitted, off_submitted, failed
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		var edit, dry int
		if err := rows.Scan(&r.ID, &started, &r.CSVPath, &edit, &dry,
			&r.ActiveSubmitted, &r.OffSubmitted, &r.Failed); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.EditMode = edit != 0
		r.DryRun = dry != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Failures returns the failed dates of one run, oldest first.
func (s *Store) Failures(ctx context.Context, runID int64) ([]Failure, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, reason FROM failures WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Date, &f.Reason); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
