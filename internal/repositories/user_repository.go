package repositories

import (
	"errors"

	"usermgmt/internal/models"
)

// Sentinel errors returned by every UserRepository implementation.
// Callers match them with errors.Is to pick the outward status.
var (
	// ErrUserNotFound indicates the referenced user ID does not exist
	// (never existed, or was deleted).
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates the operation would duplicate an email
	// already held by another user.
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepository defines the interface for user data access.
//
// Implementations own the whole read-modify-write cycle: uniqueness
// checks, ID assignment and mutation happen atomically inside the
// repository, so two racing creates with the same email can never both
// succeed. Returned records are copies; mutating them does not touch
// the stored state.
type UserRepository interface {
	// Create assigns the next ID, stamps CreatedAt, marks the user
	// active and stores it. Returns ErrEmailTaken if the email is
	// already registered (the ID counter is not consumed in that case).
	Create(user *models.User) error

	// GetAll returns users in insertion order, skipping the first
	// `skip` records and returning at most `limit`. Out-of-range
	// values yield an empty slice, never an error.
	GetAll(skip, limit int) ([]models.User, error)

	// GetByID returns the user with the given ID, or ErrUserNotFound.
	GetByID(id int) (*models.User, error)

	// Update applies the set fields of upd to the stored user,
	// all-or-nothing. Returns ErrUserNotFound for an unknown ID and
	// ErrEmailTaken when the new email belongs to a different user;
	// in both cases the stored record is untouched. ID and CreatedAt
	// are never modified.
	Update(id int, upd models.UserUpdate) (*models.User, error)

	// Delete removes the user permanently, or returns ErrUserNotFound.
	// The freed ID is never reassigned.
	Delete(id int) error
}
