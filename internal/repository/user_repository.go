package repository

import (
    "context"
    "fmt"

    "github.com/iliyamo/court-reservation/internal/model"
)

const userColumns = `id, email, password_hash, first_name, last_name, phone, role, created_at, updated_at`

// GetUser returns the user with the given id or ErrNotFound.
func (r *Queries) GetUser(ctx context.Context, id uint64) (*model.User, error) {
    var u model.User
    const q = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
    if err := r.getContext(ctx, &u, q, id); err != nil {
        return nil, notFound(err)
    }
    return &u, nil
}

// UpsertUser inserts a user keyed by email, or leaves an existing row in
// place, and stores the row's id on u.  It backs the seed command; users
// are not created over the API.
func (r *Queries) UpsertUser(ctx context.Context, u *model.User) error {
    const q = `INSERT INTO users (email, password_hash, first_name, last_name, phone, role)
               VALUES (?, ?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`
    res, err := r.q.ExecContext(ctx, q, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.Role)
    if err != nil {
        return fmt.Errorf("upsert user %s: %w", u.Email, err)
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    u.ID = uint64(id)
    return nil
}
