package user

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested user does not exist.
var ErrNotFound = errors.New("user not found")

// User is the public view of a user. The password is never read back.
type User struct {
	ID    string
	Email string
	Name  string
}

// Patch is a partial update of a user. Nil fields are left unchanged.
type Patch struct {
	ID       string
	Email    *string
	Password *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Email == nil && p.Password == nil
}

// Repository defines persistence operations for users.
type Repository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// Update applies the supplied fields of p. An empty patch issues no query.
	Update(ctx context.Context, p Patch) error
}
