package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"obdexporter/internal/export"
	"obdexporter/internal/faults"
	"obdexporter/internal/fileutil"
	"obdexporter/internal/thing"
)

// Store journals export runs in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

var _ export.Recorder = (*Store)(nil)

// Open initializes or connects to the history database at path and applies
// migrations.
func Open(path string) (*Store, error) {
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("ensure history dir: %w", err)
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
	if err := store.migrate(context.Background(), migrationFS); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RunStarted implements export.Recorder.
func (s *Store) RunStarted(ctx context.Context, outcome *export.Outcome) error {
	if outcome == nil {
		return errors.New("outcome is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO export_runs (
            id, client_version, format_version, output_dir, total, completed, status, started_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		outcome.RunID,
		int(outcome.ClientVersion),
		outcome.FormatVersion.Short(),
		outcome.OutputDir,
		outcome.Total,
		0,
		StatusRunning,
		formatTime(outcome.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// ItemWritten implements export.Recorder.
func (s *Store) ItemWritten(ctx context.Context, runID string, seq int, id thing.Identity, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin artifact tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO export_artifacts (run_id, seq, category, thing_id, path, written_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		runID, seq, id.Category.String(), int64(id.ID), path, formatTime(time.Now()),
	); err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE export_runs SET completed = ? WHERE id = ?`, seq, runID); err != nil {
		return fmt.Errorf("update run progress: %w", err)
	}
	return tx.Commit()
}

// RunFinished implements export.Recorder.
func (s *Store) RunFinished(ctx context.Context, outcome *export.Outcome) error {
	if outcome == nil {
		return errors.New("outcome is nil")
	}
	var (
		category any
		thingID  any
	)
	if outcome.Failure != nil {
		category = outcome.Failure.Identity.Category.String()
		thingID = int64(outcome.Failure.Identity.ID)
	}
	errorMessage := ""
	if outcome.Err != nil {
		errorMessage = outcome.Err.Error()
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE export_runs
         SET completed = ?, status = ?, error_kind = ?, error_message = ?,
             failed_category = ?, failed_thing_id = ?, finished_at = ?
         WHERE id = ?`,
		outcome.Completed,
		statusOf(outcome),
		nullableString(faults.Kind(outcome.Err)),
		nullableString(errorMessage),
		category,
		thingID,
		formatTime(outcome.FinishedAt),
		outcome.RunID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: run not recorded", outcome.RunID)
	}
	return nil
}

func statusOf(outcome *export.Outcome) Status {
	switch {
	case outcome.Err == nil:
		return StatusCompleted
	case errors.Is(outcome.Err, context.Canceled), errors.Is(outcome.Err, context.DeadlineExceeded):
		return StatusCancelled
	default:
		return StatusFailed
	}
}

// GetRun fetches a run by id. It returns nil when the run does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM export_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the newest runs first. A limit <= 0 returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM export_runs ORDER BY started_at DESC, id DESC`
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

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Artifacts returns the files written by a run in write order.
func (s *Store) Artifacts(ctx context.Context, runID string) ([]Artifact, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, seq, category, thing_id, path, written_at
         FROM export_artifacts WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []Artifact
	for rows.Next() {
		var (
			artifact   Artifact
			category   string
			thingID    int64
			writtenRaw string
		)
		if err := rows.Scan(&artifact.RunID, &artifact.Seq, &category, &thingID, &artifact.Path, &writtenRaw); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		cat, err := thing.ParseCategory(category)
		if err != nil {
			return nil, fmt.Errorf("artifact %s/%d: %w", artifact.RunID, artifact.Seq, err)
		}
		artifact.Identity = thing.New(cat, uint32(thingID))
		if written, err := parseTimeString(writtenRaw); err == nil {
			artifact.WrittenAt = written
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, rows.Err()
}

// Prune removes runs that started before cutoff, along with their artifacts,
// and returns how many runs were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM export_runs WHERE started_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}
