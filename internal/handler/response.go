package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/court-reservation/internal/booking"
)

// envelope is the body of every response.  Failures carry a readable
// message and the error kind ("validation", "not_found", "conflict",
// "forbidden" or "internal").
type envelope struct {
    Success bool        `json:"success"`
    Message string      `json:"message,omitempty"`
    Data    interface{} `json:"data,omitempty"`
    Count   *int        `json:"count,omitempty"`
    Error   string      `json:"error,omitempty"`
}

func ok(c echo.Context, status int, message string, data interface{}) error {
    return c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func okList[T any](c echo.Context, items []T) error {
    if items == nil {
        items = []T{}
    }
    n := len(items)
    return c.JSON(http.StatusOK, envelope{Success: true, Data: items, Count: &n})
}

func fail(c echo.Context, status int, kind, message string) error {
    return c.JSON(status, envelope{Success: false, Message: message, Error: kind})
}

func badRequest(c echo.Context, message string) error {
    return fail(c, http.StatusBadRequest, booking.KindValidation.String(), message)
}

func forbidden(c echo.Context) error {
    return fail(c, http.StatusForbidden, "forbidden", "not allowed to access this reservation")
}

// respondError maps err to the envelope.  Conflicts share 400 with
// validation failures; their kind tells them apart.  Anything the domain
// did not classify is logged and reported as a bare internal error.
func respondError(c echo.Context, log *zap.Logger, err error) error {
    var be *booking.Error
    if errors.As(err, &be) {
        switch be.Kind {
        case booking.KindValidation, booking.KindConflict:
            return fail(c, http.StatusBadRequest, be.Kind.String(), be.Message)
        case booking.KindNotFound:
            return fail(c, http.StatusNotFound, be.Kind.String(), be.Message)
        }
    }
    fields := []zap.Field{
        zap.String("method", c.Request().Method),
        zap.String("path", c.Path()),
        zap.Error(err),
    }
    if errors.Is(err, context.DeadlineExceeded) {
        log.Warn("request timed out", fields...)
    } else {
        log.Error("request failed", fields...)
    }
    return fail(c, http.StatusInternalServerError, booking.KindInternal.String(), "internal server error")
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id > 0
}
