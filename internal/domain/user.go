package domain

import "context"

// User is a library patron. Users are created once and never modified.
type User struct {
	ID       int64
	UserName string
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create inserts the user. A zero ID lets the store assign one; the
	// assigned ID is written back to user.ID.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]User, error)
}
