package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/domain"
)

// UserService is the user directory: lookup, existence checks and creation.
type UserService struct {
	users domain.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

// List returns all users in id order.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, userNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Exists reports whether a user with the given id is present.
func (s *UserService) Exists(ctx context.Context, id int64) (bool, error) {
	return s.users.Exists(ctx, id)
}

// Create stores a new user. A zero ID lets the store assign one.
func (s *UserService) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || user.UserName == "" {
		return nil, domain.InvalidInputf("Invalid user: user or username cannot be null or empty")
	}

	if user.ID != 0 {
		exists, err := s.users.Exists(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("check user exists: %w", err)
		}
		if exists {
			return nil, userExists(user.ID)
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, userExists(user.ID)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func userNotFound(id int64) error {
	return domain.NotFoundf("User not found with id: %d", id)
}

func userExists(id int64) error {
	return domain.Conflictf("User with ID %d already exists", id)
}
