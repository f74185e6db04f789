package history

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migration is one schema step: files are named NNN_description.sql and
// applied in ascending NNN order.
type Migration struct {
	Version   int
	Name      string
	AppliedAt time.Time
	sql       string
}

func parseMigrationName(file string) (int, string, error) {
	base := strings.TrimSuffix(file, ".sql")
	prefix, name, ok := strings.Cut(base, "_")
	if !ok || name == "" {
		return 0, "", fmt.Errorf("migration %s: want NNN_name.sql", file)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil || version <= 0 {
		return 0, "", fmt.Errorf("migration %s: bad version prefix %q", file, prefix)
	}
	return version, name, nil
}

func embeddedMigrations(fsys fs.FS) ([]Migration, error) {
	files, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	steps := make([]Migration, 0, len(files))
	seen := make(map[int]string, len(files))
	for _, file := range files {
		base := strings.TrimPrefix(file, "migrations/")
		version, name, err := parseMigrationName(base)
		if err != nil {
			return nil, err
		}
		if other, dup := seen[version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", other, base, version)
		}
		seen[version] = base
		body, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", base, err)
		}
		steps = append(steps, Migration{Version: version, Name: name, sql: string(body)})
	}
	slices.SortFunc(steps, func(a, b Migration) int { return a.Version - b.Version })
	return steps, nil
}

const migrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at TEXT NOT NULL
)`

// migrate brings the journal schema up to date in one transaction.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	steps, err := embeddedMigrations(fsys)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, migrationsTable); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	var current int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	now := formatTime(time.Now())
	for _, step := range steps {
		if step.Version <= current {
			continue
		}
		if _, err := tx.ExecContext(ctx, step.sql); err != nil {
			return fmt.Errorf("apply migration %03d_%s: %w", step.Version, step.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			step.Version, step.Name, now,
		); err != nil {
			return fmt.Errorf("record migration %03d: %w", step.Version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}

// Migrations lists the applied schema steps, oldest first.
func (s *Store) Migrations(ctx context.Context) ([]Migration, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT version, name, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	defer rows.Close()

	var applied []Migration
	for rows.Next() {
		var (
			m       Migration
			applyAt string
		)
		if err := rows.Scan(&m.Version, &m.Name, &applyAt); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		if m.AppliedAt, err = parseTimeString(applyAt); err != nil {
			return nil, fmt.Errorf("parse applied_at for %03d: %w", m.Version, err)
		}
		applied = append(applied, m)
	}
	return applied, rows.Err()
}
