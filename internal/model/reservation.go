package model

import "time"

// Reservation states.
const (
    StatusPending   = "pending"
    StatusConfirmed = "confirmed"
    StatusCancelled = "cancelled"
    StatusCompleted = "completed"
)

// Reservation records a user's booking of a court for a time window on a
// given date.  Non-cancelled reservations of the same court and date never
// overlap.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who made the reservation.
//  CourtID   – court being reserved.
//  Date      – calendar day in YYYY-MM-DD form.
//  StartTime – window start, zero padded HH:MM.
//  EndTime   – window end, zero padded HH:MM, strictly after StartTime.
//  Status    – one of the Status* constants.
//  Note      – optional free text supplied by the user.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
//  User      – summary of the booking user, set on read paths.
//  Court     – summary of the reserved court, set on read paths.
type Reservation struct {
    ID        uint64    `db:"id" json:"id"`
    UserID    uint64    `db:"user_id" json:"user_id"`
    CourtID   uint64    `db:"court_id" json:"court_id"`
    Date      string    `db:"date" json:"date"`
    StartTime string    `db:"start_time" json:"start_time"`
    EndTime   string    `db:"end_time" json:"end_time"`
    Status    string    `db:"status" json:"status"`
    Note      *string   `db:"note" json:"note,omitempty"`
    CreatedAt time.Time `db:"created_at" json:"created_at"`
    UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

    User  *UserSummary  `db:"-" json:"user,omitempty"`
    Court *CourtSummary `db:"-" json:"court,omitempty"`
}

// UserSummary is the public part of a user embedded in reservation reads.
type UserSummary struct {
    ID        uint64 `json:"id"`
    Email     string `json:"email"`
    FirstName string `json:"first_name"`
    LastName  string `json:"last_name"`
}

// CourtSummary is the part of a court embedded in reservation reads.
type CourtSummary struct {
    ID       uint64 `json:"id"`
    Name     string `json:"name"`
    Category string `json:"category"`
}

// Active reports whether the reservation still occupies its court.
func (r Reservation) Active() bool { return r.Status != StatusCancelled }
