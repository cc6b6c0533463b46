package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/court-reservation/internal/middleware"
    "github.com/iliyamo/court-reservation/internal/model"
)

// RegisterReservations registers reservation endpoints under
// /v1/reservations.  Listing every reservation is reserved to admins; the
// other routes accept any authenticated caller and the handler enforces
// ownership.
func RegisterReservations(e *echo.Echo, d Deps) {
    g := e.Group("/v1/reservations", guarded(d, authenticated(d))...)
    h := d.Reservations

    g.POST("", h.Create)
    g.GET("", h.List, adminOnly(d)...)
    g.GET("/user/:user_id", h.ListByUser)
    g.GET("/court/:court_id", h.ListByCourt("court_id"))
    g.GET("/:id", h.Get)
    g.PUT("/:id", h.Update)
    g.PUT("/:id/cancel", h.Cancel)
    g.DELETE("/:id", h.Delete)
}

// adminOnly narrows an already authenticated route to admins.
func adminOnly(d Deps) []echo.MiddlewareFunc {
    if !d.AuthEnabled {
        return nil
    }
    return []echo.MiddlewareFunc{middleware.RequireRole(model.RoleAdmin)}
}
