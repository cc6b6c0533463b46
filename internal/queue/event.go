// Package queue defines message payloads exchanged over the message broker
// and the RabbitMQ publisher and consumer that carry them.
package queue

import (
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/court-reservation/internal/model"
)

// Reservation lifecycle event types.  They double as routing keys on the
// reservations topic exchange.
const (
    EventReservationCreated   = "reservation.created"
    EventReservationUpdated   = "reservation.updated"
    EventReservationCancelled = "reservation.cancelled"
    EventReservationDeleted   = "reservation.deleted"
)

// ReservationEvent is published after a reservation write commits.  It is
// a full snapshot so consumers never need to query the database.
type ReservationEvent struct {
    EventID       string `json:"event_id"`
    Type          string `json:"type"`
    ReservationID uint64 `json:"reservation_id"`
    UserID        uint64 `json:"user_id"`
    CourtID       uint64 `json:"court_id"`
    Date          string `json:"date"`
    StartTime     string `json:"start_time"`
    EndTime       string `json:"end_time"`
    Status        string `json:"status"`
    OccurredAt    string `json:"occurred_at"`
}

// NewReservationEvent snapshots res into an event of the given type.
func NewReservationEvent(eventType string, res model.Reservation) ReservationEvent {
    return ReservationEvent{
        EventID:       uuid.NewString(),
        Type:          eventType,
        ReservationID: res.ID,
        UserID:        res.UserID,
        CourtID:       res.CourtID,
        Date:          res.Date,
        StartTime:     res.StartTime,
        EndTime:       res.EndTime,
        Status:        res.Status,
        OccurredAt:    time.Now().UTC().Format(time.RFC3339),
    }
}
