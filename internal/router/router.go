package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"
    "github.com/prometheus/client_golang/prometheus/promhttp"

    "github.com/iliyamo/court-reservation/internal/handler"
    "github.com/iliyamo/court-reservation/internal/middleware"
    "github.com/iliyamo/court-reservation/internal/model"
)

// Deps carries everything RegisterRoutes needs.  Cache and RateLimit may
// be nil.
type Deps struct {
    Reservations *handler.ReservationHandler
    Courts       *handler.CourtHandler
    DB           handler.Pinger
    Cache        *middleware.ResponseCache
    RateLimit    echo.MiddlewareFunc

    // When AuthEnabled is false every route is open and handlers skip
    // ownership checks.
    AuthEnabled bool
    JWTSecret   string
}

// RegisterRoutes registers the operational endpoints and every /v1 route.
func RegisterRoutes(e *echo.Echo, d Deps) {
    e.GET("/healthz", handler.Health(d.DB))
    e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

    RegisterReservations(e, d)
    RegisterCourts(e, d)
}

// authenticated returns the middleware chain for routes that need a
// caller.  It is empty when auth is disabled.
func authenticated(d Deps) []echo.MiddlewareFunc {
    if !d.AuthEnabled {
        return nil
    }
    return []echo.MiddlewareFunc{
        middleware.JWTAuth(d.JWTSecret),
        middleware.RequireRole(model.RoleAdmin, model.RoleUser),
    }
}

// guarded layers the rate limiter and the response cache after auth so
// both see the caller's identity when building their keys.
func guarded(d Deps, auth []echo.MiddlewareFunc) []echo.MiddlewareFunc {
    mws := append([]echo.MiddlewareFunc{}, auth...)
    if d.RateLimit != nil {
        mws = append(mws, d.RateLimit)
    }
    if d.Cache != nil {
        mws = append(mws, d.Cache.Middleware())
    }
    return mws
}
