package repository

import (
    "context"
    "fmt"

    "github.com/jmoiron/sqlx"

    "github.com/iliyamo/court-reservation/internal/model"
)

// ListTimeSlots returns the slots offered by a court ordered by start time.
func (r *Queries) ListTimeSlots(ctx context.Context, courtID uint64) ([]model.TimeSlot, error) {
    const q = `SELECT id, court_id, start_time, end_time, created_at FROM time_slots WHERE court_id = ? ORDER BY start_time`
    slots := []model.TimeSlot{}
    if err := sqlx.SelectContext(ctx, r.q, &slots, q, courtID); err != nil {
        return nil, fmt.Errorf("list time slots: %w", err)
    }
    return slots, nil
}

// UpsertTimeSlot inserts a slot unless the court already offers one with
// the same start time.
func (r *Queries) UpsertTimeSlot(ctx context.Context, s *model.TimeSlot) error {
    const q = `INSERT INTO time_slots (court_id, start_time, end_time)
               VALUES (?, ?, ?)
               ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`
    res, err := r.q.ExecContext(ctx, q, s.CourtID, s.StartTime, s.EndTime)
    if err != nil {
        return fmt.Errorf("upsert time slot %d/%s: %w", s.CourtID, s.StartTime, err)
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    s.ID = uint64(id)
    return nil
}
