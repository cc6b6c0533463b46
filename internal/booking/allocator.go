// Package booking validates reservation requests against existing
// reservations and court state, and applies the resulting writes as one
// transaction.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/iliyamo/court-reservation/internal/metrics"
	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/queue"
	"github.com/iliyamo/court-reservation/internal/repository"
)

// EventPublisher receives reservation lifecycle events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// publishTimeout bounds the post-commit publish so a slow broker cannot
// hold a request open.
const publishTimeout = 3 * time.Second

// Allocator owns every reservation write.
type Allocator struct {
	store    repository.Store
	events   EventPublisher
	log      *zap.Logger
	validate *validator.Validate
}

// NewAllocator returns an Allocator over store.  events may be nil, in
// which case nothing is published.
func NewAllocator(store repository.Store, events EventPublisher, log *zap.Logger) *Allocator {
	if store == nil {
		panic("nil store passed to NewAllocator")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Allocator{store: store, events: events, log: log, validate: newValidator()}
}

// Create validates req and stores a new reservation.  The court row is
// locked for the duration of the transaction so concurrent requests for
// the same court are checked one after the other.
func (a *Allocator) Create(ctx context.Context, req CreateRequest) (*model.Reservation, error) {
	if err := validateStruct(a.validate, req); err != nil {
		return nil, a.reject("validation", err)
	}
	window, err := parseRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, a.reject("validation", err)
	}
	status := req.Status
	if status == "" {
		status = model.StatusPending
	}
	res := &model.Reservation{
		UserID:    req.UserID,
		CourtID:   req.CourtID,
		Date:      req.Date,
		StartTime: FormatClock(window.Start),
		EndTime:   FormatClock(window.End),
		Status:    status,
		Note:      req.Note,
	}

	err = a.store.WithTx(ctx, func(tx repository.Tx) error {
		// The court lock must be the first read of the transaction so the
		// snapshot used by ActiveReservations is taken while it is held.
		court, courtErr := tx.LockCourt(ctx, req.CourtID)
		if courtErr != nil && !errors.Is(courtErr, repository.ErrNotFound) {
			return fmt.Errorf("lock court %d: %w", req.CourtID, courtErr)
		}
		if _, err := tx.GetUser(ctx, req.UserID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("load user %d: %w", req.UserID, err)
		}
		if courtErr != nil {
			return ErrCourtNotFound
		}
		if court.Status != model.CourtAvailable {
			return ErrCourtUnavailable
		}
		if err := checkOverlap(ctx, tx, court.ID, res.Date, window, 0); err != nil {
			return err
		}
		return tx.InsertReservation(ctx, res)
	})
	if err != nil {
		return nil, a.reject("create", err)
	}

	metrics.RecordReservation(res.Status)
	a.log.Info("reservation created",
		zap.Uint64("reservation_id", res.ID),
		zap.Uint64("court_id", res.CourtID),
		zap.String("date", res.Date),
		zap.String("window", res.StartTime+"-"+res.EndTime))
	a.publish(ctx, queue.EventReservationCreated, *res)
	return res, nil
}

// Update applies the non-nil fields of req.  When the court, date or window
// changes the new placement is checked like a fresh reservation, ignoring
// the reservation itself.
func (a *Allocator) Update(ctx context.Context, id uint64, req UpdateRequest) (*model.Reservation, error) {
	if err := validateStruct(a.validate, req); err != nil {
		return nil, a.reject("validation", err)
	}
	if req.empty() {
		return nil, a.reject("validation", validationError("at least one field must be provided"))
	}

	var out *model.Reservation
	err := a.store.WithTx(ctx, func(tx repository.Tx) error {
		cur, err := tx.LockReservation(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("lock reservation %d: %w", id, err)
		}
		if !cur.Active() {
			return ErrReservationCancelled
		}

		next := *cur
		if req.CourtID != nil {
			next.CourtID = *req.CourtID
		}
		if req.Date != nil {
			next.Date = *req.Date
		}
		if req.StartTime != nil {
			next.StartTime = *req.StartTime
		}
		if req.EndTime != nil {
			next.EndTime = *req.EndTime
		}
		if req.Status != nil {
			next.Status = *req.Status
		}
		if req.Note != nil {
			next.Note = req.Note
		}

		window, err := parseRange(next.StartTime, next.EndTime)
		if err != nil {
			return err
		}
		next.StartTime = FormatClock(window.Start)
		next.EndTime = FormatClock(window.End)

		moved := next.CourtID != cur.CourtID || next.Date != cur.Date ||
			next.StartTime != cur.StartTime || next.EndTime != cur.EndTime
		if moved {
			court, err := tx.LockCourt(ctx, next.CourtID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrCourtNotFound
				}
				return fmt.Errorf("lock court %d: %w", next.CourtID, err)
			}
			if court.Status != model.CourtAvailable {
				return ErrCourtUnavailable
			}
			if err := checkOverlap(ctx, tx, court.ID, next.Date, window, cur.ID); err != nil {
				return err
			}
		}
		if err := tx.UpdateReservation(ctx, &next); err != nil {
			return err
		}
		out = &next
		return nil
	})
	if err != nil {
		return nil, a.reject("update", err)
	}

	a.log.Info("reservation updated", zap.Uint64("reservation_id", out.ID), zap.String("status", out.Status))
	a.publish(ctx, queue.EventReservationUpdated, *out)
	return out, nil
}

// Cancel marks the reservation cancelled and releases its court when the
// court is currently held as reserved.
func (a *Allocator) Cancel(ctx context.Context, id uint64) (*model.Reservation, error) {
	var out *model.Reservation
	err := a.store.WithTx(ctx, func(tx repository.Tx) error {
		res, err := tx.LockReservation(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("lock reservation %d: %w", id, err)
		}
		if !res.Active() {
			return ErrAlreadyCancelled
		}
		res.Status = model.StatusCancelled
		if err := tx.UpdateReservation(ctx, res); err != nil {
			return err
		}
		if err := releaseCourt(ctx, tx, res.CourtID); err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, a.reject("cancel", err)
	}

	metrics.RecordCancellation()
	a.log.Info("reservation cancelled", zap.Uint64("reservation_id", out.ID), zap.Uint64("court_id", out.CourtID))
	a.publish(ctx, queue.EventReservationCancelled, *out)
	return out, nil
}

// Delete removes the reservation.  A reservation that was still active
// releases its court first.
func (a *Allocator) Delete(ctx context.Context, id uint64) error {
	var gone model.Reservation
	err := a.store.WithTx(ctx, func(tx repository.Tx) error {
		res, err := tx.LockReservation(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("lock reservation %d: %w", id, err)
		}
		if res.Active() {
			if err := releaseCourt(ctx, tx, res.CourtID); err != nil {
				return err
			}
		}
		if err := tx.DeleteReservation(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		gone = *res
		return nil
	})
	if err != nil {
		return a.reject("delete", err)
	}

	a.log.Info("reservation deleted", zap.Uint64("reservation_id", id))
	a.publish(ctx, queue.EventReservationDeleted, gone)
	return nil
}

// Get returns one reservation.
func (a *Allocator) Get(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := a.store.GetReservation(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// List returns reservations matching f, newest first.
func (a *Allocator) List(ctx context.Context, f repository.ReservationFilter) ([]model.Reservation, error) {
	if err := a.checkDate(f.Date); err != nil {
		return nil, err
	}
	return a.store.ListReservations(ctx, f)
}

// ListByUser returns the reservations of one user.  An unknown user simply
// has none.
func (a *Allocator) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return a.store.ListReservations(ctx, repository.ReservationFilter{UserID: userID})
}

// ListByCourt returns the reservations of one court, optionally limited to
// a single day.
func (a *Allocator) ListByCourt(ctx context.Context, courtID uint64, date string) ([]model.Reservation, error) {
	if err := a.checkDate(date); err != nil {
		return nil, err
	}
	return a.store.ListReservations(ctx, repository.ReservationFilter{CourtID: courtID, Date: date})
}

// checkDate accepts an empty filter or a YYYY-MM-DD day.
func (a *Allocator) checkDate(date string) error {
	if date == "" {
		return nil
	}
	if err := a.validate.Var(date, "datetime=2006-01-02"); err != nil {
		return validationError("date must be in YYYY-MM-DD format")
	}
	return nil
}

// checkOverlap fails with ErrOverlap when window collides with an active
// reservation of the court on date.  The reservation with id skip is
// ignored; zero skips nothing.
func checkOverlap(ctx context.Context, tx repository.Tx, courtID uint64, date string, window TimeRange, skip uint64) error {
	existing, err := tx.ActiveReservations(ctx, courtID, date)
	if err != nil {
		return err
	}
	for _, r := range existing {
		if r.ID == skip && skip != 0 {
			continue
		}
		other, err := parseRange(r.StartTime, r.EndTime)
		if err != nil {
			return fmt.Errorf("stored reservation %d has an invalid window %s-%s", r.ID, r.StartTime, r.EndTime)
		}
		if Overlaps(window, other) {
			return ErrOverlap
		}
	}
	return nil
}

// releaseCourt flips a reserved court back to available.  Courts in any
// other state are left alone.
func releaseCourt(ctx context.Context, tx repository.Tx, courtID uint64) error {
	court, err := tx.LockCourt(ctx, courtID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lock court %d: %w", courtID, err)
	}
	if court.Status != model.CourtReserved {
		return nil
	}
	return tx.SetCourtStatus(ctx, courtID, model.CourtAvailable)
}

// reject records the failure and passes err through unchanged.
func (a *Allocator) reject(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		reason := e.Kind.String()
		switch e {
		case ErrOverlap:
			reason = "overlap"
		case ErrCourtUnavailable:
			reason = "court_unavailable"
		}
		metrics.RecordRejection(reason)
		a.log.Debug("reservation rejected", zap.String("op", op), zap.String("reason", e.Message))
		return err
	}
	a.log.Error("reservation write failed", zap.String("op", op), zap.Error(err))
	return err
}

func (a *Allocator) publish(ctx context.Context, eventType string, res model.Reservation) {
	if a.events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := a.events.Publish(pctx, queue.NewReservationEvent(eventType, res)); err != nil {
		metrics.RecordEvent(eventType, "error")
		a.log.Warn("publish reservation event", zap.String("type", eventType), zap.Error(err))
		return
	}
	metrics.RecordEvent(eventType, "ok")
}
