package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/domain"
)

// Lending transitions, as reported to a TransitionRecorder.
const (
	TransitionBorrow = "borrow"
	TransitionReturn = "return"
)

// UserDirectory is the part of UserService the lending rules depend on.
type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// BookCatalog is the part of BookService the lending rules depend on.
type BookCatalog interface {
	Get(ctx context.Context, id int64) (*domain.Book, error)
	SaveLending(ctx context.Context, book *domain.Book, wasAvailable bool) (*domain.Book, error)
}

// TransitionRecorder observes the outcome of each lending transition.
type TransitionRecorder interface {
	RecordTransition(transition string, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordTransition(string, error) {}

// LendingService moves books between the available and borrowed states.
type LendingService struct {
	users    UserDirectory
	books    BookCatalog
	recorder TransitionRecorder
}

// NewLendingService creates a new LendingService. recorder may be nil.
func NewLendingService(users UserDirectory, books BookCatalog, recorder TransitionRecorder) *LendingService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &LendingService{users: users, books: books, recorder: recorder}
}

// Borrow lends an available book to an existing user. The user is checked
// before the book, so a missing user is reported even if the book is also
// missing or already lent.
func (s *LendingService) Borrow(ctx context.Context, bookID, userID int64) (*domain.Book, error) {
	book, err := s.borrow(ctx, bookID, userID)
	s.recorder.RecordTransition(TransitionBorrow, err)
	return book, err
}

func (s *LendingService) borrow(ctx context.Context, bookID, userID int64) (*domain.Book, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user exists: %w", err)
	}
	if !exists {
		return nil, userNotFound(userID)
	}

	book, err := s.books.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if book.State() == domain.BookStateBorrowed {
		return nil, errAlreadyBorrowed()
	}

	book.Available = false
	book.BorrowerID = &userID

	saved, err := s.books.SaveLending(ctx, book, true)
	if err != nil {
		if isBareConflict(err) {
			return nil, errAlreadyBorrowed()
		}
		return nil, err
	}

	slog.InfoContext(ctx, "book borrowed", "book_id", bookID, "user_id", userID)
	return saved, nil
}

// Return makes a borrowed book available again.
func (s *LendingService) Return(ctx context.Context, bookID int64) (*domain.Book, error) {
	book, err := s.returnBook(ctx, bookID)
	s.recorder.RecordTransition(TransitionReturn, err)
	return book, err
}

func (s *LendingService) returnBook(ctx context.Context, bookID int64) (*domain.Book, error) {
	book, err := s.books.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if book.State() == domain.BookStateAvailable {
		return nil, errNotBorrowed()
	}

	var borrowerID int64
	if book.BorrowerID != nil {
		borrowerID = *book.BorrowerID
	}
	book.Available = true
	book.BorrowerID = nil

	saved, err := s.books.SaveLending(ctx, book, false)
	if err != nil {
		if isBareConflict(err) {
			return nil, errNotBorrowed()
		}
		return nil, err
	}

	slog.InfoContext(ctx, "book returned", "book_id", bookID, "user_id", borrowerID)
	return saved, nil
}

// isBareConflict reports a lost optimistic update, as opposed to an
// already-described *domain.Error.
func isBareConflict(err error) bool {
	var de *domain.Error
	return errors.Is(err, domain.ErrConflict) && !errors.As(err, &de)
}

func errAlreadyBorrowed() error {
	return domain.Conflictf("Book is already borrowed")
}

func errNotBorrowed() error {
	return domain.Conflictf("Book is not currently borrowed")
}
