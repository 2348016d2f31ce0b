package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
)

// Migration describes one migration file and whether it has been applied.
type Migration struct {
	Filename string
	Applied  bool
}

// Run applies all unapplied migrations from the embedded FS to the database.
// It tracks applied migrations in a schema_migrations table.
func Run(ctx context.Context, db *sql.DB) error {
	return RunFS(ctx, db, FS)
}

// RunFS is Run against an arbitrary set of .sql files.
func RunFS(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	status, err := StatusFS(ctx, db, fsys)
	if err != nil {
		return err
	}

	for _, m := range status {
		if m.Applied {
			slog.Debug("migration already applied", "file", m.Filename)
			continue
		}
		if err := applyMigration(ctx, db, fsys, m.Filename); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Filename, err)
		}
		slog.Info("migration applied", "file", m.Filename)
	}
	return nil
}

// Status lists every embedded migration with its applied state.
func Status(ctx context.Context, db *sql.DB) ([]Migration, error) {
	return StatusFS(ctx, db, FS)
}

// StatusFS is Status against an arbitrary set of .sql files.
func StatusFS(ctx context.Context, db *sql.DB, fsys fs.FS) ([]Migration, error) {
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure migrations table: %w", err)
	}

	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("get applied migrations: %w", err)
	}

	// fs.Glob returns names in lexical order.
	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migration files: %w", err)
	}

	status := make([]Migration, len(files))
	for i, name := range files {
		status[i] = Migration{Filename: name, Applied: applied[name]}
	}
	return status, nil
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func appliedMigrations(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, err
		}
		applied[filename] = true
	}
	return applied, rows.Err()
}

func applyMigration(ctx context.Context, db *sql.DB, fsys fs.FS, filename string) error {
	content, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("execute sql: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", filename); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	return tx.Commit()
}
