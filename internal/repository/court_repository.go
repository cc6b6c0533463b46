package repository

import (
    "context"
    "fmt"
    "strings"

    "github.com/jmoiron/sqlx"

    "github.com/iliyamo/court-reservation/internal/model"
)

const courtColumns = `id, name, category, capacity, status, description, created_at, updated_at`

// CourtFilter narrows ListCourts.  Empty fields are ignored.
type CourtFilter struct {
    Category string
    Status   string
}

// GetCourt returns the court with the given id or ErrNotFound.
func (r *Queries) GetCourt(ctx context.Context, id uint64) (*model.Court, error) {
    var c model.Court
    const q = `SELECT ` + courtColumns + ` FROM courts WHERE id = ?`
    if err := r.getContext(ctx, &c, q, id); err != nil {
        return nil, notFound(err)
    }
    return &c, nil
}

// LockCourt reads the court and holds an exclusive row lock on it until the
// surrounding transaction ends.  Every write that adds or moves a
// reservation locks the target court first, which serialises the overlap
// check per court.
func (r *Queries) LockCourt(ctx context.Context, id uint64) (*model.Court, error) {
    var c model.Court
    const q = `SELECT ` + courtColumns + ` FROM courts WHERE id = ? FOR UPDATE`
    if err := r.getContext(ctx, &c, q, id); err != nil {
        return nil, notFound(err)
    }
    return &c, nil
}

// ListCourts returns courts ordered by name.
func (r *Queries) ListCourts(ctx context.Context, f CourtFilter) ([]model.Court, error) {
    var (
        conds []string
        args  []interface{}
    )
    if f.Category != "" {
        conds = append(conds, "category = ?")
        args = append(args, f.Category)
    }
    if f.Status != "" {
        conds = append(conds, "status = ?")
        args = append(args, f.Status)
    }
    q := `SELECT ` + courtColumns + ` FROM courts`
    if len(conds) > 0 {
        q += ` WHERE ` + strings.Join(conds, " AND ")
    }
    q += ` ORDER BY name`
    courts := []model.Court{}
    if err := sqlx.SelectContext(ctx, r.q, &courts, q, args...); err != nil {
        return nil, fmt.Errorf("list courts: %w", err)
    }
    return courts, nil
}

// SetCourtStatus changes the availability state of a court.
func (r *Queries) SetCourtStatus(ctx context.Context, id uint64, status string) error {
    const q = `UPDATE courts SET status = ? WHERE id = ?`
    if _, err := r.q.ExecContext(ctx, q, status, id); err != nil {
        return fmt.Errorf("set court %d status: %w", id, err)
    }
    return nil
}

// UpsertCourt inserts a court keyed by name, or keeps the existing row, and
// stores the row's id on c.
func (r *Queries) UpsertCourt(ctx context.Context, c *model.Court) error {
    const q = `INSERT INTO courts (name, category, capacity, status, description)
               VALUES (?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`
    res, err := r.q.ExecContext(ctx, q, c.Name, c.Category, c.Capacity, c.Status, c.Description)
    if err != nil {
        return fmt.Errorf("upsert court %s: %w", c.Name, err)
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    c.ID = uint64(id)
    return nil
}

func (r *Queries) getContext(ctx context.Context, dest interface{}, q string, args ...interface{}) error {
    return sqlx.GetContext(ctx, r.q, dest, q, args...)
}
