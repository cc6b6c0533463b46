package repository

import (
    "context"
    "fmt"

    "github.com/jmoiron/sqlx"

    "github.com/iliyamo/court-reservation/internal/model"
)

// Reader groups the read paths served outside of a transaction.
type Reader interface {
    GetUser(ctx context.Context, id uint64) (*model.User, error)
    GetCourt(ctx context.Context, id uint64) (*model.Court, error)
    ListCourts(ctx context.Context, f CourtFilter) ([]model.Court, error)
    ListTimeSlots(ctx context.Context, courtID uint64) ([]model.TimeSlot, error)
    GetReservation(ctx context.Context, id uint64) (*model.Reservation, error)
    ListReservations(ctx context.Context, f ReservationFilter) ([]model.Reservation, error)
}

// Tx is the set of operations the booking flow performs inside a single
// transaction.  Lock* methods take row locks that are held until the
// transaction ends.
type Tx interface {
    GetUser(ctx context.Context, id uint64) (*model.User, error)
    LockCourt(ctx context.Context, id uint64) (*model.Court, error)
    SetCourtStatus(ctx context.Context, id uint64, status string) error
    LockReservation(ctx context.Context, id uint64) (*model.Reservation, error)
    ActiveReservations(ctx context.Context, courtID uint64, date string) ([]model.Reservation, error)
    InsertReservation(ctx context.Context, r *model.Reservation) error
    UpdateReservation(ctx context.Context, r *model.Reservation) error
    DeleteReservation(ctx context.Context, id uint64) error
}

// Store is the persistence handle passed to the booking allocator.
type Store interface {
    Reader
    WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Queries runs every statement against either the pool or an open
// transaction, so the same code serves both paths.
type Queries struct {
    q sqlx.ExtContext
}

// SQLStore is the MySQL backed Store.
type SQLStore struct {
    *Queries
    db *sqlx.DB
}

// NewStore returns a SQLStore bound to the given database.
func NewStore(db *sqlx.DB) *SQLStore {
    return &SQLStore{Queries: &Queries{q: db}, db: db}
}

// DB exposes the underlying pool for callers that need raw access.
func (s *SQLStore) DB() *sqlx.DB { return s.db }

// WithTx runs fn inside a transaction.  The transaction is committed when
// fn returns nil and rolled back otherwise; fn's error is returned as is.
func (s *SQLStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
    tx, err := s.db.BeginTxx(ctx, nil)
    if err != nil {
        return fmt.Errorf("begin transaction: %w", err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := fn(&Queries{q: tx}); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return fmt.Errorf("commit transaction: %w", err)
    }
    committed = true
    return nil
}
