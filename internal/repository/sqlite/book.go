package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"

	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/domain"
)

const tableBooks = "books"

var dialect = goqu.Dialect("sqlite3")

// bookRow mirrors a row of the books table.
type bookRow struct {
	ID         int64  `db:"id"`
	Title      string `db:"title"`
	Author     string `db:"author"`
	Available  bool   `db:"is_available"`
	BorrowerID *int64 `db:"borrower_id"`
}

func (row bookRow) toDomain() domain.Book {
	return domain.Book{
		ID:         row.ID,
		Title:      row.Title,
		Author:     row.Author,
		Available:  row.Available,
		BorrowerID: row.BorrowerID,
	}
}

// BookRepository implements domain.BookRepository using SQLite. Reads are
// built with goqu and scanned with sqlx; writes use plain statements.
type BookRepository struct {
	db  *sql.DB
	dbx *sqlx.DB
}

// NewBookRepository creates a new SQLite-backed BookRepository.
func NewBookRepository(db *DB) *BookRepository {
	return &BookRepository{db: db.SqlDB, dbx: sqlx.NewDb(db.SqlDB, "sqlite")}
}

func (r *BookRepository) Create(ctx context.Context, book *domain.Book) error {
	now := time.Now().UTC()

	var (
		result sql.Result
		err    error
	)
	if book.ID != 0 {
		result, err = r.db.ExecContext(ctx,
			`INSERT INTO books (id, title, author, is_available, borrower_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			book.ID, book.Title, book.Author, book.Available, book.BorrowerID, now, now,
		)
	} else {
		result, err = r.db.ExecContext(ctx,
			`INSERT INTO books (title, author, is_available, borrower_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			book.Title, book.Author, book.Available, book.BorrowerID, now, now,
		)
	}
	if err != nil {
		switch {
		case isUniqueConstraintError(err):
			return domain.ErrConflict
		case isCheckConstraintError(err):
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert book: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	book.ID = id
	return nil
}

func (r *BookRepository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	query, args, err := selectBooks().Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build book query: %w", err)
	}

	var row bookRow
	if err := sqlx.GetContext(ctx, r.dbx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get book by id: %w", err)
	}
	book := row.toDomain()
	return &book, nil
}

func (r *BookRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM books WHERE id = ?)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check book exists: %w", err)
	}
	return exists, nil
}

func (r *BookRepository) List(ctx context.Context) ([]domain.Book, error) {
	return r.selectAll(ctx, selectBooks())
}

func (r *BookRepository) ListByBorrower(ctx context.Context, userID int64) ([]domain.Book, error) {
	return r.selectAll(ctx, selectBooks().Where(goqu.C("borrower_id").Eq(userID)))
}

// Search matches title and author as case-insensitive substrings. Both
// conditions must hold; an empty field matches everything.
func (r *BookRepository) Search(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error) {
	return r.selectAll(ctx, selectBooks().Where(
		goqu.L(`lower(title) LIKE ? ESCAPE '\'`, containsPattern(filter.Title)),
		goqu.L(`lower(author) LIKE ? ESCAPE '\'`, containsPattern(filter.Author)),
	))
}

func (r *BookRepository) UpdateDetails(ctx context.Context, book *domain.Book) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE books SET title = ?, author = ?, updated_at = ? WHERE id = ?`,
		book.Title, book.Author, time.Now().UTC(), book.ID,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BookRepository) SetLending(ctx context.Context, book *domain.Book, wasAvailable bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE books SET is_available = ?, borrower_id = ?, updated_at = ?
		 WHERE id = ? AND is_available = ?`,
		book.Available, book.BorrowerID, time.Now().UTC(), book.ID, wasAvailable,
	)
	if err != nil {
		if isCheckConstraintError(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("update book lending: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// Nothing matched: either the row is gone or another transition won.
	exists, err := r.Exists(ctx, book.ID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BookRepository) selectAll(ctx context.Context, ds *goqu.SelectDataset) ([]domain.Book, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build book query: %w", err)
	}

	var rows []bookRow
	if err := sqlx.SelectContext(ctx, r.dbx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select books: %w", err)
	}

	books := make([]domain.Book, len(rows))
	for i, row := range rows {
		books[i] = row.toDomain()
	}
	return books, nil
}

func selectBooks() *goqu.SelectDataset {
	return dialect.From(tableBooks).
		Select("id", "title", "author", "is_available", "borrower_id").
		Order(goqu.I("id").Asc()).
		Prepared(true)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns s into a LIKE pattern matching any value that
// contains s, ignoring case.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
