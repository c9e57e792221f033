package domain

import "context"

// UserRepository defines the interface for user persistence.
// Reads must reflect the latest committed state; nothing in front of it caches.
type UserRepository interface {
	// Create stores a new user and sets its ID
	Create(ctx context.Context, user *User) error

	// FindByID finds a user by ID. Returns ErrUserNotFound when absent.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByEmail finds a user by email. Returns ErrUserNotFound when absent.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail checks if a user exists with the given email
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// UpdatePassword overwrites a user's password hash
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
}
