package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/domain"
	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/repository/sqlite"
	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/service"
)

type testServices struct {
	db      *sqlite.DB
	users   *service.UserService
	books   *service.BookService
	lending *service.LendingService
	rec     *fakeRecorder
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })

	users := service.NewUserService(db.Users())
	books := service.NewBookService(db.Books(), db.Users())
	rec := &fakeRecorder{}
	return &testServices{
		db:      db,
		users:   users,
		books:   books,
		lending: service.NewLendingService(users, books, rec),
		rec:     rec,
	}
}

func (s *testServices) createUser(t *testing.T, name string) *domain.User {
	t.Helper()
	user, err := s.users.Create(context.Background(), &domain.User{UserName: name})
	require.NoError(t, err)
	return user
}

func (s *testServices) createBook(t *testing.T, title, author string) *domain.Book {
	t.Helper()
	book, err := s.books.Create(context.Background(), &domain.Book{Title: title, Author: author, Available: true})
	require.NoError(t, err)
	return book
}

type transition struct {
	name string
	err  error
}

type fakeRecorder struct {
	mu          sync.Mutex
	transitions []transition
}

func (r *fakeRecorder) RecordTransition(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, transition{name: name, err: err})
}

func ptr[T any](v T) *T { return &v }
