package handler

import (
	"strings"

	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/domain"
)

// BookDTO is the JSON representation of a book.
type BookDTO struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Available  bool   `json:"available"`
	BorrowerID *int64 `json:"borrowerId"`
}

func toBookDTO(b *domain.Book) BookDTO {
	return BookDTO{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		Available:  b.Available,
		BorrowerID: b.BorrowerID,
	}
}

func toBookDTOs(books []domain.Book) []BookDTO {
	dtos := make([]BookDTO, len(books))
	for i := range books {
		dtos[i] = toBookDTO(&books[i])
	}
	return dtos
}

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID       int64  `json:"id"`
	UserName string `json:"userName"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{ID: u.ID, UserName: u.UserName}
}

func toUserDTOs(users []domain.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = toUserDTO(&users[i])
	}
	return dtos
}

const errInconsistentLending = "Invalid book: borrowerId must be set exactly when the book is not available"

// BookRequest is the body of POST /books and PUT /books/{id}. Pointer fields
// distinguish an absent value from a zero one.
type BookRequest struct {
	ID         *int64  `json:"id"`
	Title      *string `json:"title"`
	Author     *string `json:"author"`
	Available  *bool   `json:"available"`
	BorrowerID *int64  `json:"borrowerId"`
}

// validate returns a client-facing message for the first invalid field.
func (req *BookRequest) validate() string {
	switch {
	case req.Title == nil:
		return "Title cannot be null"
	case strings.TrimSpace(*req.Title) == "":
		return "Title cannot be empty"
	case req.Author == nil:
		return "Author cannot be null"
	case strings.TrimSpace(*req.Author) == "":
		return "Author cannot be empty"
	case req.Available != nil && !*req.Available && req.BorrowerID == nil:
		return errInconsistentLending
	}
	return ""
}

func (req *BookRequest) toDomain() *domain.Book {
	book := &domain.Book{
		Title:      *req.Title,
		Author:     *req.Author,
		Available:  true,
		BorrowerID: req.BorrowerID,
	}
	if req.ID != nil {
		book.ID = *req.ID
	}
	if req.Available != nil {
		book.Available = *req.Available
	}
	return book
}

// UserRequest is the body of POST /users.
type UserRequest struct {
	ID       *int64  `json:"id"`
	UserName *string `json:"userName"`
}

func (req *UserRequest) validate() string {
	if req.UserName == nil {
		return "Username cannot be null"
	}
	return ""
}

func (req *UserRequest) toDomain() *domain.User {
	user := &domain.User{UserName: *req.UserName}
	if req.ID != nil {
		user.ID = *req.ID
	}
	return user
}
