package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/domain"
)

func TestBookService_Create_DefaultsAvailable(t *testing.T) {
	s := newTestServices(t)

	book, err := s.books.Create(context.Background(), &domain.Book{Title: "T", Author: "A"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), book.ID)
	assert.True(t, book.Available)
	assert.Nil(t, book.BorrowerID)
}

func TestBookService_Create_ExplicitIDConflict(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, err := s.books.Create(ctx, &domain.Book{ID: 7, Title: "T", Author: "A", Available: true})
	require.NoError(t, err)

	_, err = s.books.Create(ctx, &domain.Book{ID: 7, Title: "T", Author: "A", Available: true})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.EqualError(t, err, "Book with ID 7 already exists")
}

func TestBookService_Create_ZeroIDSkipsExistenceCheck(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	first, err := s.books.Create(ctx, &domain.Book{Title: "One", Author: "A", Available: true})
	require.NoError(t, err)
	second, err := s.books.Create(ctx, &domain.Book{ID: 0, Title: "Two", Author: "B", Available: true})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestBookService_Create_KeepsCallerLending(t *testing.T) {
	s := newTestServices(t)
	user := s.createUser(t, "Ana")

	book, err := s.books.Create(context.Background(), &domain.Book{
		Title: "T", Author: "A", Available: false, BorrowerID: &user.ID,
	})
	require.NoError(t, err)
	assert.False(t, book.Available)
	require.NotNil(t, book.BorrowerID)
	assert.Equal(t, user.ID, *book.BorrowerID)
}

func TestBookService_Create_InconsistentLending(t *testing.T) {
	s := newTestServices(t)

	user := s.createUser(t, "Ana")

	_, err := s.books.Create(context.Background(), &domain.Book{
		Title: "T", Author: "A", Available: true, BorrowerID: &user.ID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.EqualError(t, err, "Invalid book: borrowerId must be set exactly when the book is not available")

	books, err := s.books.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestBookService_Get_NotFound(t *testing.T) {
	s := newTestServices(t)

	_, err := s.books.Get(context.Background(), 12)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualError(t, err, "Book not found with id: 12")
}

func TestBookService_Search(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	s.createBook(t, "Test Book", "Some Author")
	s.createBook(t, "Another", "Someone Else")

	tests := []struct {
		name   string
		title  *string
		author *string
		want   int
	}{
		{"title only", ptr("Test"), ptr(""), 1},
		{"author only", ptr(""), ptr("Author"), 1},
		{"nil author", ptr("test"), nil, 1},
		{"padded input is trimmed", ptr("  another  "), nil, 1},
		{"both must match", ptr("Test"), ptr("Else"), 0},
		{"no match is empty, not error", ptr("missing"), nil, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			books, err := s.books.Search(ctx, tc.title, tc.author)
			require.NoError(t, err)
			assert.Len(t, books, tc.want)
		})
	}
}

func TestBookService_Search_RequiresParameter(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	for _, params := range [][2]*string{
		{nil, nil},
		{ptr(""), ptr("")},
		{ptr("  "), ptr("\t")},
	} {
		_, err := s.books.Search(ctx, params[0], params[1])
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.EqualError(t, err, "At least one search parameter (title or author) must be provided")
	}
}

func TestBookService_Update_OnlyTitleAndAuthor(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	user := s.createUser(t, "Ana")
	book := s.createBook(t, "Old", "Author")

	_, err := s.lending.Borrow(ctx, book.ID, user.ID)
	require.NoError(t, err)

	updated, err := s.books.Update(ctx, &domain.Book{ID: book.ID, Title: "New", Author: "Other", Available: true})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "Other", updated.Author)
	assert.False(t, updated.Available)
	require.NotNil(t, updated.BorrowerID)
	assert.Equal(t, user.ID, *updated.BorrowerID)

	stored, err := s.books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestBookService_Update_NotFound(t *testing.T) {
	s := newTestServices(t)

	_, err := s.books.Update(context.Background(), &domain.Book{ID: 3, Title: "T", Author: "A"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookService_Remove(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	book := s.createBook(t, "T", "A")

	require.NoError(t, s.books.Remove(ctx, book.ID))

	_, err := s.books.Get(ctx, book.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = s.books.Remove(ctx, book.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookService_ListByBorrower(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	ana := s.createUser(t, "Ana")
	bo := s.createUser(t, "Bo")
	b1 := s.createBook(t, "One", "A")
	s.createBook(t, "Two", "B")

	_, err := s.lending.Borrow(ctx, b1.ID, ana.ID)
	require.NoError(t, err)

	books, err := s.books.ListByBorrower(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, b1.ID, books[0].ID)

	books, err = s.books.ListByBorrower(ctx, bo.ID)
	require.NoError(t, err)
	assert.Empty(t, books)

	_, err = s.books.ListByBorrower(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualError(t, err, "User not found with id: 999")
}

func TestBookService_Update_Nil(t *testing.T) {
	s := newTestServices(t)

	_, err := s.books.Update(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
