package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/repository/sqlite/migrations"
)

// DB wraps a SQLite connection and hands out the repositories built on it.
type DB struct {
	SqlDB *sql.DB

	users *UserRepository
	books *BookRepository
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := sqlDB.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := sqlDB.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// A single connection serializes writers, so each lending update is
	// applied atomically against the row it read.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(context.Background()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{SqlDB: sqlDB}
	db.users = NewUserRepository(db)
	db.books = NewBookRepository(db)
	return db, nil
}

// Migrate applies all pending schema migrations.
func (db *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, db.SqlDB)
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.SqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (db *DB) Close() error {
	return db.SqlDB.Close()
}

func (db *DB) Users() *UserRepository { return db.users }
func (db *DB) Books() *BookRepository { return db.books }

// isUniqueConstraintError checks if the error is a SQLite unique or primary key violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isCheckConstraintError checks if the error is a SQLite CHECK constraint violation.
func isCheckConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "CHECK constraint failed")
}
