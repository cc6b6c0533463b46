package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// RequireRole rejects requests whose role claim is not one of roles with
// 403 Forbidden.  JWTAuth must run first.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !allowed[CurrentRole(c)] {
                return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "insufficient role", "error": "forbidden"})
            }
            return next(c)
        }
    }
}
