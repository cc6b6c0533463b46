package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sqlx.DB and *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// Health reports liveness.  When db is non-nil the database must answer a
// ping within two seconds, otherwise the endpoint returns 503.
func Health(db Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        if db != nil {
            ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
            defer cancel()
            if err := db.PingContext(ctx); err != nil {
                return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "database": "down"})
            }
        }
        return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
    }
}
