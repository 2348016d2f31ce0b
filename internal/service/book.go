package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/domain"
)

// BookService is the book catalog: lookup, search, creation, update and
// removal of books.
type BookService struct {
	books domain.BookRepository
	users domain.UserRepository
}

// NewBookService creates a new BookService.
func NewBookService(books domain.BookRepository, users domain.UserRepository) *BookService {
	return &BookService{books: books, users: users}
}

// List returns all books in id order.
func (s *BookService) List(ctx context.Context) ([]domain.Book, error) {
	return s.books.List(ctx)
}

// Get returns the book with the given id. A missing book is always an
// error, never a nil book.
func (s *BookService) Get(ctx context.Context, id int64) (*domain.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, bookNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// ListByBorrower returns the books currently lent to the given user.
func (s *BookService) ListByBorrower(ctx context.Context, userID int64) ([]domain.Book, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user exists: %w", err)
	}
	if !exists {
		return nil, userNotFound(userID)
	}
	return s.books.ListByBorrower(ctx, userID)
}

// Search finds books whose title and author both contain the given values,
// ignoring case. Nil means no filter on that field, but at least one value
// must be non-blank.
func (s *BookService) Search(ctx context.Context, title, author *string) ([]domain.Book, error) {
	filter := domain.BookFilter{Title: trimmed(title), Author: trimmed(author)}
	if filter.Title == "" && filter.Author == "" {
		return nil, domain.InvalidInputf("At least one search parameter (title or author) must be provided")
	}
	return s.books.Search(ctx, filter)
}

// Create stores a new book. A zero ID lets the store assign one; any other
// ID must be unused. A book with no borrower and Available unset is stored
// as available; other lending fields are stored as given.
func (s *BookService) Create(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if book == nil {
		return nil, domain.InvalidInputf("Invalid book: book cannot be null")
	}
	if book.BorrowerID == nil {
		book.Available = true
	}

	if book.ID != 0 {
		exists, err := s.books.Exists(ctx, book.ID)
		if err != nil {
			return nil, fmt.Errorf("check book exists: %w", err)
		}
		if exists {
			return nil, bookExists(book.ID)
		}
	}

	if err := s.books.Create(ctx, book); err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			return nil, bookExists(book.ID)
		case errors.Is(err, domain.ErrInvalidInput):
			return nil, domain.InvalidInputf("Invalid book: borrowerId must be set exactly when the book is not available")
		}
		return nil, fmt.Errorf("create book: %w", err)
	}
	return book, nil
}

// Update copies title and author onto the stored book. Lending fields on
// the input are ignored.
func (s *BookService) Update(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if book == nil {
		return nil, domain.InvalidInputf("Invalid book: book cannot be null")
	}

	existing, err := s.Get(ctx, book.ID)
	if err != nil {
		return nil, err
	}

	existing.Title = book.Title
	existing.Author = book.Author

	if err := s.books.UpdateDetails(ctx, existing); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, bookNotFound(book.ID)
		}
		return nil, fmt.Errorf("update book: %w", err)
	}
	return existing, nil
}

// Remove deletes the book with the given id.
func (s *BookService) Remove(ctx context.Context, id int64) error {
	if err := s.books.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return bookNotFound(id)
		}
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

// SaveLending persists the lending fields of book, provided the stored
// availability still equals wasAvailable. A lost race is reported as
// domain.ErrConflict.
func (s *BookService) SaveLending(ctx context.Context, book *domain.Book, wasAvailable bool) (*domain.Book, error) {
	if err := s.books.SetLending(ctx, book, wasAvailable); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, bookNotFound(book.ID)
		case errors.Is(err, domain.ErrConflict):
			return nil, err
		}
		return nil, fmt.Errorf("save lending: %w", err)
	}
	return book, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func bookNotFound(id int64) error {
	return domain.NotFoundf("Book not found with id: %d", id)
}

func bookExists(id int64) error {
	return domain.Conflictf("Book with ID %d already exists", id)
}
