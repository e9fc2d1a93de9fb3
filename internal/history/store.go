package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"sortdl/internal/organizer"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes. Older journals must
// be deleted.
const schemaVersion = 1

var (
	// ErrSchemaMismatch indicates the journal was written by an incompatible version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
	// ErrAmbiguousRunID indicates a run id prefix matched more than one run.
	ErrAmbiguousRunID = errors.New("run id prefix is ambiguous")
)

// Store persists run reports in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Run summarizes one recorded run.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	DryRun      bool
	Confirm     bool
	Interrupted bool
	SourceRoot  string
	MoviesRoot  string
	TVRoot      string
	Moved       int
	Deleted     int
	Kept        int
	Skipped     int
	Errors      int
	Pruned      int
}

// Action is one recorded report entry.
type Action struct {
	Seq         int
	Path        string
	Kind        string
	Outcome     organizer.Outcome
	Destination string
	Reason      string
}

// Open initializes or connects to the journal at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: journal has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Record stores report and all of its entries in one transaction.
func (s *Store) Record(ctx context.Context, report *organizer.Report) error {
	if report == nil {
		return errors.New("report is nil")
	}
	counts := report.Counts()
	skipped := counts[organizer.OutcomeSkippedNoMatch] +
		counts[organizer.OutcomeSkippedParseFailure] +
		counts[organizer.OutcomeSkippedDeclined]

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, started_at, finished_at, dry_run, confirm, interrupted,
            source_root, movies_root, tv_root, moved, deleted, kept, skipped, errors, pruned
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID,
		formatTime(report.StartedAt),
		nullableTime(report.FinishedAt),
		boolToInt(report.DryRun),
		boolToInt(report.Confirm),
		boolToInt(report.Interrupted),
		report.SourceRoot,
		nullableString(report.MoviesRoot),
		nullableString(report.TVRoot),
		counts[organizer.OutcomeMoved],
		counts[organizer.OutcomeDeleted],
		counts[organizer.OutcomeKept],
		skipped,
		counts[organizer.OutcomeError],
		len(report.Pruned),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, entry := range report.Entries {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO actions (run_id, seq, path, kind, outcome, destination, reason)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			report.RunID, i, entry.Path, entry.Kind, string(entry.Outcome),
			nullableString(entry.Destination), nullableString(entry.Reason),
		)
		if err != nil {
			return fmt.Errorf("insert action %d: %w", i, err)
		}
	}
	for i, dir := range report.Pruned {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pruned_dirs (run_id, seq, path) VALUES (?, ?, ?)`,
			report.RunID, i, dir,
		); err != nil {
			return fmt.Errorf("insert pruned dir %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, dry_run, confirm, interrupted,
    source_root, movies_root, tv_root, moved, deleted, kept, skipped, errors, pruned`

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun fetches a run by id or unique id prefix. A missing run returns nil
// without error.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR substr(id, 1, ?) = ? ORDER BY id = ? DESC LIMIT 2`,
		id, len(id), id, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	switch {
	case len(found) == 0:
		return nil, nil
	case found[0].ID == id || len(found) == 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousRunID, id)
	}
}

// Actions returns the recorded entries of a run in report order.
func (s *Store) Actions(ctx context.Context, runID string) ([]Action, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, path, kind, outcome, destination, reason FROM actions WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var (
			a           Action
			outcome     string
			destination sql.NullString
			reason      sql.NullString
		)
		if err := rows.Scan(&a.Seq, &a.Path, &a.Kind, &outcome, &destination, &reason); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a.Outcome = organizer.Outcome(outcome)
		a.Destination = destination.String
		a.Reason = reason.String
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return actions, nil
}

// PrunedDirectories returns the directories a run removed, in removal order.
func (s *Store) PrunedDirectories(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM pruned_dirs WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list pruned dirs: %w", err)
	}
	defer rows.Close()

	var dirs []string
	for rows.Next() {
		var dir string
		if err := rows.Scan(&dir); err != nil {
			return nil, fmt.Errorf("scan pruned dir: %w", err)
		}
		dirs = append(dirs, dir)
	}
	return dirs, rows.Err()
}
