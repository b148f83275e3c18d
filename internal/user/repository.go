package user

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when no user matches.
var ErrNotFound = errors.New("user not found")

// Repository persists user records.
type Repository interface {
	// Create inserts a new user. A duplicate email yields an EMAIL_TAKEN error.
	Create(ctx context.Context, u *User) error

	// GetByID returns ErrNotFound if the id does not resolve.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail returns ErrNotFound if no user has the email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update overwrites every mutable column of an existing user.
	Update(ctx context.Context, u *User) error

	// Search returns users whose name or email contains query, case-insensitively,
	// excluding excludeID.
	Search(ctx context.Context, query, excludeID string) ([]*User, error)
}
