package handler

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/court-reservation/internal/booking"
    "github.com/iliyamo/court-reservation/internal/middleware"
    "github.com/iliyamo/court-reservation/internal/model"
    "github.com/iliyamo/court-reservation/internal/repository"
)

const (
    defaultPageSize = 50
    maxPageSize     = 200
)

// ReservationService is the part of booking.Allocator the HTTP layer uses.
type ReservationService interface {
    Create(ctx context.Context, req booking.CreateRequest) (*model.Reservation, error)
    Update(ctx context.Context, id uint64, req booking.UpdateRequest) (*model.Reservation, error)
    Cancel(ctx context.Context, id uint64) (*model.Reservation, error)
    Delete(ctx context.Context, id uint64) error
    Get(ctx context.Context, id uint64) (*model.Reservation, error)
    List(ctx context.Context, f repository.ReservationFilter) ([]model.Reservation, error)
    ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
    ListByCourt(ctx context.Context, courtID uint64, date string) ([]model.Reservation, error)
}

// ReservationHandler exposes reservation operations over HTTP.  When a
// token has been validated upstream, callers with the user role may only
// touch their own reservations; without a token no ownership is enforced.
type ReservationHandler struct {
    svc     ReservationService
    log     *zap.Logger
    timeout time.Duration
}

// NewReservationHandler panics if svc is nil.
func NewReservationHandler(svc ReservationService, log *zap.Logger, timeout time.Duration) *ReservationHandler {
    if svc == nil {
        panic("nil service passed to NewReservationHandler")
    }
    if log == nil {
        log = zap.NewNop()
    }
    if timeout <= 0 {
        timeout = 5 * time.Second
    }
    return &ReservationHandler{svc: svc, log: log, timeout: timeout}
}

func (h *ReservationHandler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), h.timeout)
}

// restricted reports whether the caller is an authenticated non-admin, and
// if so returns their user ID.
func restricted(c echo.Context) (uint64, bool) {
    id, ok := middleware.CurrentUserID(c)
    if !ok || middleware.CurrentRole(c) == model.RoleAdmin {
        return 0, false
    }
    return id, true
}

// Create handles POST /v1/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
    var req booking.CreateRequest
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }
    if uid, ok := restricted(c); ok {
        // the caller books for themselves unless they say otherwise
        if req.UserID == 0 {
            req.UserID = uid
        } else if req.UserID != uid {
            return forbidden(c)
        }
    }

    ctx, cancel := h.ctx(c)
    defer cancel()
    res, err := h.svc.Create(ctx, req)
    if err != nil {
        return respondError(c, h.log, err)
    }
    return ok(c, http.StatusCreated, "reservation created", res)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
    id, valid := parseID(c, "id")
    if !valid {
        return badRequest(c, "invalid reservation id")
    }
    ctx, cancel := h.ctx(c)
    defer cancel()

    res, err := h.svc.Get(ctx, id)
    if err != nil {
        return respondError(c, h.log, err)
    }
    if uid, ok := restricted(c); ok && res.UserID != uid {
        return forbidden(c)
    }
    return ok(c, http.StatusOK, "", res)
}

// authorize lets admins and unauthenticated deployments through and
// otherwise checks that reservation id belongs to the caller.  When it
// returns false the response has already been written.
func (h *ReservationHandler) authorize(ctx context.Context, c echo.Context, id uint64) (bool, error) {
    uid, ok := restricted(c)
    if !ok {
        return true, nil
    }
    res, err := h.svc.Get(ctx, id)
    if err != nil {
        return false, respondError(c, h.log, err)
    }
    if res.UserID != uid {
        return false, forbidden(c)
    }
    return true, nil
}

// Update handles PUT /v1/reservations/:id.
func (h *ReservationHandler) Update(c echo.Context) error {
    id, valid := parseID(c, "id")
    if !valid {
        return badRequest(c, "invalid reservation id")
    }
    var req booking.UpdateRequest
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }
    ctx, cancel := h.ctx(c)
    defer cancel()

    if allowed, err := h.authorize(ctx, c, id); !allowed {
        return err
    }
    res, err := h.svc.Update(ctx, id, req)
    if err != nil {
        return respondError(c, h.log, err)
    }
    return ok(c, http.StatusOK, "reservation updated", res)
}

// Cancel handles PUT /v1/reservations/:id/cancel.
func (h *ReservationHandler) Cancel(c echo.Context) error {
    id, valid := parseID(c, "id")
    if !valid {
        return badRequest(c, "invalid reservation id")
    }
    ctx, cancel := h.ctx(c)
    defer cancel()

    if allowed, err := h.authorize(ctx, c, id); !allowed {
        return err
    }
    res, err := h.svc.Cancel(ctx, id)
    if err != nil {
        return respondError(c, h.log, err)
    }
    return ok(c, http.StatusOK, "reservation cancelled", res)
}

// Delete handles DELETE /v1/reservations/:id.
func (h *ReservationHandler) Delete(c echo.Context) error {
    id, valid := parseID(c, "id")
    if !valid {
        return badRequest(c, "invalid reservation id")
    }
    ctx, cancel := h.ctx(c)
    defer cancel()

    if allowed, err := h.authorize(ctx, c, id); !allowed {
        return err
    }
    if err := h.svc.Delete(ctx, id); err != nil {
        return respondError(c, h.log, err)
    }
    return ok(c, http.StatusOK, "reservation deleted", nil)
}

// List handles GET /v1/reservations.  Supported query parameters are
// user_id, court_id, date, status, limit and offset.
func (h *ReservationHandler) List(c echo.Context) error {
    f, msg := parseReservationFilter(c)
    if msg != "" {
        return badRequest(c, msg)
    }
    ctx, cancel := h.ctx(c)
    defer cancel()

    items, err := h.svc.List(ctx, f)
    if err != nil {
        return respondError(c, h.log, err)
    }
    return okList(c, items)
}

func parseReservationFilter(c echo.Context) (repository.ReservationFilter, string) {
    f := repository.ReservationFilter{
        Date:   c.QueryParam("date"),
        Status: c.QueryParam("status"),
        Limit:  defaultPageSize,
    }
    uintParams := []struct {
        name string
        dst  *uint64
    }{{"user_id", &f.UserID}, {"court_id", &f.CourtID}}
    for _, p := range uintParams {
        if raw := c.QueryParam(p.name); raw != "" {
            v, err := strconv.ParseUint(raw, 10, 64)
            if err != nil {
                return f, "invalid " + p.name
            }
            *p.dst = v
        }
    }
    if raw := c.QueryParam("limit"); raw != "" {
        n, err := strconv.Atoi(raw)
        if err != nil || n <= 0 {
            return f, "invalid limit"
        }
        if n > maxPageSize {
            n = maxPageSize
        }
        f.Limit = n
    }
    if raw := c.QueryParam("offset"); raw != "" {
        n, err := strconv.Atoi(raw)
        if err != nil || n < 0 {
            return f, "invalid offset"
        }
        f.Offset = n
    }
    switch f.Status {
    case "", model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted:
    default:
        return f, "invalid status"
    }
    return f, ""
}

// ListByUser handles GET /v1/reservations/user/:user_id.
func (h *ReservationHandler) ListByUser(c echo.Context) error {
    userID, valid := parseID(c, "user_id")
    if !valid {
        return badRequest(c, "invalid user id")
    }
    if uid, ok := restricted(c); ok && uid != userID {
        return forbidden(c)
    }
    ctx, cancel := h.ctx(c)
    defer cancel()

    items, err := h.svc.ListByUser(ctx, userID)
    if err != nil {
        return respondError(c, h.log, err)
    }
    return okList(c, items)
}

// ListByCourt handles GET /v1/reservations/court/:court_id and the court
// day schedule GET /v1/courts/:id/reservations?date=YYYY-MM-DD.
func (h *ReservationHandler) ListByCourt(param string) echo.HandlerFunc {
    return func(c echo.Context) error {
        courtID, valid := parseID(c, param)
        if !valid {
            return badRequest(c, "invalid court id")
        }
        ctx, cancel := h.ctx(c)
        defer cancel()

        items, err := h.svc.ListByCourt(ctx, courtID, c.QueryParam("date"))
        if err != nil {
            return respondError(c, h.log, err)
        }
        return okList(c, items)
    }
}
