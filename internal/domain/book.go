package domain

import "context"

// BookState is the lending state of a book.
type BookState string

const (
	BookStateAvailable BookState = "available"
	BookStateBorrowed  BookState = "borrowed"
)

// Book is a catalogued title. BorrowerID is set if and only if Available is
// false.
type Book struct {
	ID         int64
	Title      string
	Author     string
	Available  bool
	BorrowerID *int64
}

// State reports the lending state derived from Available.
func (b *Book) State() BookState {
	if b.Available {
		return BookStateAvailable
	}
	return BookStateBorrowed
}

// Consistent reports whether the availability flag and the borrower
// reference agree.
func (b *Book) Consistent() bool {
	return b.Available == (b.BorrowerID == nil)
}

// BookFilter narrows a book search. An empty field matches every book.
type BookFilter struct {
	Title  string
	Author string
}

// BookRepository defines persistence operations for books.
type BookRepository interface {
	// Create inserts the book. A zero ID lets the store assign one; the
	// assigned ID is written back to book.ID.
	Create(ctx context.Context, book *Book) error
	GetByID(ctx context.Context, id int64) (*Book, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]Book, error)
	ListByBorrower(ctx context.Context, userID int64) ([]Book, error)
	Search(ctx context.Context, filter BookFilter) ([]Book, error)
	// UpdateDetails writes title and author only.
	UpdateDetails(ctx context.Context, book *Book) error
	// SetLending writes the lending fields only if the stored availability
	// still equals wasAvailable. It returns ErrConflict when it does not.
	SetLending(ctx context.Context, book *Book, wasAvailable bool) error
	Delete(ctx context.Context, id int64) error
}
