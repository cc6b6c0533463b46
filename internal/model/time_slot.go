package model

import "time"

// TimeSlot is a predefined booking window offered by a court.  Slots are
// seeded once and never mutated; reservations carry their own start and
// end times and do not reference a slot.
type TimeSlot struct {
    ID        uint64    `db:"id" json:"id"`
    CourtID   uint64    `db:"court_id" json:"court_id"`
    StartTime string    `db:"start_time" json:"start_time"` // HH:MM
    EndTime   string    `db:"end_time" json:"end_time"`     // HH:MM
    CreatedAt time.Time `db:"created_at" json:"created_at"`
}
