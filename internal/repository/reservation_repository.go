package repository

import (
    "context"
    "fmt"
    "strings"

    "github.com/jmoiron/sqlx"

    "github.com/iliyamo/court-reservation/internal/model"
)

// reservationColumns selects reservation rows in the shape of
// model.Reservation.  DATE columns are formatted in SQL so they scan into
// plain strings regardless of parseTime.
const reservationColumns = `id, user_id, court_id, DATE_FORMAT(date, '%Y-%m-%d') AS date, start_time, end_time, status, note, created_at, updated_at`

// reservationDetail joins the booking user and court so reads can embed
// their summaries.
const reservationDetail = `SELECT r.id, r.user_id, r.court_id, DATE_FORMAT(r.date, '%Y-%m-%d') AS date, r.start_time, r.end_time, r.status, r.note, r.created_at, r.updated_at,
    u.email AS user_email, u.first_name AS user_first_name, u.last_name AS user_last_name,
    c.name AS court_name, c.category AS court_category
    FROM reservations r
    JOIN users u ON u.id = r.user_id
    JOIN courts c ON c.id = r.court_id`

type reservationRow struct {
    model.Reservation
    UserEmail     string `db:"user_email"`
    UserFirstName string `db:"user_first_name"`
    UserLastName  string `db:"user_last_name"`
    CourtName     string `db:"court_name"`
    CourtCategory string `db:"court_category"`
}

func (row reservationRow) toModel() model.Reservation {
    res := row.Reservation
    res.User = &model.UserSummary{ID: res.UserID, Email: row.UserEmail, FirstName: row.UserFirstName, LastName: row.UserLastName}
    res.Court = &model.CourtSummary{ID: res.CourtID, Name: row.CourtName, Category: row.CourtCategory}
    return res
}

// ReservationFilter narrows ListReservations.  Zero values are ignored.
type ReservationFilter struct {
    UserID  uint64
    CourtID uint64
    Date    string
    Status  string
    Limit   int
    Offset  int
}

// GetReservation returns the reservation with the given id, with user and
// court summaries, or ErrNotFound.
func (r *Queries) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
    var row reservationRow
    const q = reservationDetail + ` WHERE r.id = ?`
    if err := r.getContext(ctx, &row, q, id); err != nil {
        return nil, notFound(err)
    }
    res := row.toModel()
    return &res, nil
}

// LockReservation reads the reservation and holds an exclusive row lock on
// it until the surrounding transaction ends.
func (r *Queries) LockReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
    var res model.Reservation
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? FOR UPDATE`
    if err := r.getContext(ctx, &res, q, id); err != nil {
        return nil, notFound(err)
    }
    return &res, nil
}

// ActiveReservations returns the non-cancelled reservations of a court on
// one day ordered by start time.
func (r *Queries) ActiveReservations(ctx context.Context, courtID uint64, date string) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations
               WHERE court_id = ? AND date = ? AND status <> 'cancelled'
               ORDER BY start_time`
    out := []model.Reservation{}
    if err := sqlx.SelectContext(ctx, r.q, &out, q, courtID, date); err != nil {
        return nil, fmt.Errorf("list active reservations: %w", err)
    }
    return out, nil
}

// ListReservations returns reservations newest day first, later windows
// first within a day, each with user and court summaries.
func (r *Queries) ListReservations(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
    var (
        conds []string
        args  []interface{}
    )
    if f.UserID != 0 {
        conds = append(conds, "r.user_id = ?")
        args = append(args, f.UserID)
    }
    if f.CourtID != 0 {
        conds = append(conds, "r.court_id = ?")
        args = append(args, f.CourtID)
    }
    if f.Date != "" {
        conds = append(conds, "r.date = ?")
        args = append(args, f.Date)
    }
    if f.Status != "" {
        conds = append(conds, "r.status = ?")
        args = append(args, f.Status)
    }
    q := reservationDetail
    if len(conds) > 0 {
        q += ` WHERE ` + strings.Join(conds, " AND ")
    }
    q += ` ORDER BY r.date DESC, r.start_time DESC`
    if f.Limit > 0 {
        q += ` LIMIT ? OFFSET ?`
        args = append(args, f.Limit, f.Offset)
    }
    rows := []reservationRow{}
    if err := sqlx.SelectContext(ctx, r.q, &rows, q, args...); err != nil {
        return nil, fmt.Errorf("list reservations: %w", err)
    }
    out := make([]model.Reservation, 0, len(rows))
    for _, row := range rows {
        out = append(out, row.toModel())
    }
    return out, nil
}

// InsertReservation stores a new reservation and reloads it so the
// generated id, status default and timestamps are populated on res.
func (r *Queries) InsertReservation(ctx context.Context, res *model.Reservation) error {
    const q = `INSERT INTO reservations (user_id, court_id, date, start_time, end_time, status, note) VALUES (?, ?, ?, ?, ?, ?, ?)`
    result, err := r.q.ExecContext(ctx, q, res.UserID, res.CourtID, res.Date, res.StartTime, res.EndTime, res.Status, res.Note)
    if err != nil {
        return fmt.Errorf("insert reservation: %w", err)
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    return r.reload(ctx, uint64(id), res)
}

// UpdateReservation writes every mutable column of res and reloads it.
func (r *Queries) UpdateReservation(ctx context.Context, res *model.Reservation) error {
    const q = `UPDATE reservations SET court_id = ?, date = ?, start_time = ?, end_time = ?, status = ?, note = ? WHERE id = ?`
    if _, err := r.q.ExecContext(ctx, q, res.CourtID, res.Date, res.StartTime, res.EndTime, res.Status, res.Note, res.ID); err != nil {
        return fmt.Errorf("update reservation %d: %w", res.ID, err)
    }
    return r.reload(ctx, res.ID, res)
}

// DeleteReservation removes the row.  ErrNotFound is returned when nothing
// was deleted.
func (r *Queries) DeleteReservation(ctx context.Context, id uint64) error {
    const q = `DELETE FROM reservations WHERE id = ?`
    result, err := r.q.ExecContext(ctx, q, id)
    if err != nil {
        return fmt.Errorf("delete reservation %d: %w", id, err)
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrNotFound
    }
    return nil
}

func (r *Queries) reload(ctx context.Context, id uint64, res *model.Reservation) error {
    fresh, err := r.GetReservation(ctx, id)
    if err != nil {
        return fmt.Errorf("reload reservation %d: %w", id, err)
    }
    *res = *fresh
    return nil
}
