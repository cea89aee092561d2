package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"noticehub/internal/app/user"
)

const createUser = `INSERT INTO users (email, password_hash)
VALUES ($1, $2)
RETURNING id, email, password_hash, created_at`

// CreateUser inserts a user. A duplicate email yields user.ErrEmailTaken.
func (q *Queries) CreateUser(ctx context.Context, email, passwordHash string) (*user.User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, createUser, email, passwordHash))
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, user.ErrEmailTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

const getUserByID = `SELECT id, email, password_hash, created_at
FROM users
WHERE id = $1`

// GetUserByID returns user.ErrNotFound when no row matches.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (*user.User, error) {
	return getOne(scanUser(q.db.QueryRow(ctx, getUserByID, id)))
}

const getUserByEmail = `SELECT id, email, password_hash, created_at
FROM users
WHERE email = $1`

// GetUserByEmail returns user.ErrNotFound when no row matches.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return getOne(scanUser(q.db.QueryRow(ctx, getUserByEmail, email)))
}

const deleteUser = `DELETE FROM users WHERE id = $1`

// DeleteUser removes a user and, by cascade, their notices.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, deleteUser, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func getOne(u *user.User, err error) (*user.User, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}
