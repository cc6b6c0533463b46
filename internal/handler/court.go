package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/court-reservation/internal/booking"
    "github.com/iliyamo/court-reservation/internal/model"
    "github.com/iliyamo/court-reservation/internal/repository"
)

// CourtReader is the read side of the store used by court endpoints.
type CourtReader interface {
    GetCourt(ctx context.Context, id uint64) (*model.Court, error)
    ListCourts(ctx context.Context, f repository.CourtFilter) ([]model.Court, error)
    ListTimeSlots(ctx context.Context, courtID uint64) ([]model.TimeSlot, error)
}

// CourtHandler serves the read-only court catalogue.
type CourtHandler struct {
    courts  CourtReader
    log     *zap.Logger
    timeout time.Duration
}

func NewCourtHandler(courts CourtReader, log *zap.Logger, timeout time.Duration) *CourtHandler {
    if courts == nil {
        panic("nil reader passed to NewCourtHandler")
    }
    if log == nil {
        log = zap.NewNop()
    }
    if timeout <= 0 {
        timeout = 5 * time.Second
    }
    return &CourtHandler{courts: courts, log: log, timeout: timeout}
}

// List handles GET /v1/courts with an optional ?category= filter.
func (h *CourtHandler) List(c echo.Context) error {
    return h.list(c, "")
}

// Available handles GET /v1/courts/available.
func (h *CourtHandler) Available(c echo.Context) error {
    return h.list(c, model.CourtAvailable)
}

func (h *CourtHandler) list(c echo.Context, status string) error {
    category := c.QueryParam("category")
    if category != "" && !model.ValidCategory(category) {
        return badRequest(c, "invalid category")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
    defer cancel()

    courts, err := h.courts.ListCourts(ctx, repository.CourtFilter{Category: category, Status: status})
    if err != nil {
        return respondError(c, h.log, err)
    }
    return okList(c, courts)
}

// Get handles GET /v1/courts/:id.
func (h *CourtHandler) Get(c echo.Context) error {
    id, valid := parseID(c, "id")
    if !valid {
        return badRequest(c, "invalid court id")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
    defer cancel()

    court, err := h.courts.GetCourt(ctx, id)
    if err != nil {
        return respondError(c, h.log, courtErr(err))
    }
    return ok(c, http.StatusOK, "", court)
}

// TimeSlots handles GET /v1/courts/:id/time-slots.
func (h *CourtHandler) TimeSlots(c echo.Context) error {
    id, valid := parseID(c, "id")
    if !valid {
        return badRequest(c, "invalid court id")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
    defer cancel()

    if _, err := h.courts.GetCourt(ctx, id); err != nil {
        return respondError(c, h.log, courtErr(err))
    }
    slots, err := h.courts.ListTimeSlots(ctx, id)
    if err != nil {
        return respondError(c, h.log, err)
    }
    return okList(c, slots)
}

func courtErr(err error) error {
    if errors.Is(err, repository.ErrNotFound) {
        return booking.ErrCourtNotFound
    }
    return err
}
