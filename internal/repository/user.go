package repository

import (
	"context"

	"multiplicadores/internal/model"
)

// UserRepository defines data access for administrative accounts.
type UserRepository interface {
	// FindByUsername returns the user with the given username,
	// compared case-insensitively.
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create inserts a new user and returns the stored record.
	Create(ctx context.Context, u *model.User) (*model.User, error)
}
