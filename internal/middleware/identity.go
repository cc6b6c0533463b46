package middleware

// identity.go holds the context keys JWTAuth fills in and the accessors
// handlers and other middleware use to read them back.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

const (
    ctxUserID    = "user_id"
    ctxRole      = "role"
    ctxRequestID = "request_id"
)

// CurrentUserID returns the authenticated user's ID.  ok is false when the
// request carried no valid token.
func CurrentUserID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(ctxUserID).(uint64)
    return id, ok && id > 0
}

// CurrentRole returns the role claim of the authenticated user, or "".
func CurrentRole(c echo.Context) string {
    role, _ := c.Get(ctxRole).(string)
    return role
}

// RequestID returns the ID assigned by RequestLogger.
func RequestID(c echo.Context) string {
    id, _ := c.Get(ctxRequestID).(string)
    return id
}

// principal names the caller for cache and rate-limit keys.
func principal(c echo.Context) string {
    if id, ok := CurrentUserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
