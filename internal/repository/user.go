package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/storefront-api/internal/domain/user"
)

const (
	listUsersSQL = `SELECT id, email, name FROM users ORDER BY id`

	getUserByIDSQL = `SELECT id, email, name FROM users WHERE id = $1`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL. It never
// selects the password column.
type UserRepository struct {
	db DB
}

// NewUserRepository returns a UserRepository that uses the given connection.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// List returns all users ordered by ID.
func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.db.Query(ctx, listUsersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// GetByID returns a single user, or user.ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	rows, err := r.db.Query(ctx, getUserByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}
	return &u, nil
}

// Update sets the fields present in p. A patch with no fields is a no-op.
func (r *UserRepository) Update(ctx context.Context, p user.Patch) error {
	if p.Empty() {
		return nil
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, v string) {
		args = append(args, v)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if p.Email != nil {
		set("email", *p.Email)
	}
	if p.Password != nil {
		set("password", *p.Password)
	}
	args = append(args, p.ID)

	sql := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = $" + strconv.Itoa(len(args))
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("updating user %q: %w", p.ID, err)
	}
	return nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.Name)
	return u, err
}
