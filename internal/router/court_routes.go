package router

import (
    "github.com/labstack/echo/v4"
)

// RegisterCourts registers the court catalogue under /v1/courts.  The
// catalogue is public; the day schedule exposes user IDs and so follows
// the reservation routes' authentication.
func RegisterCourts(e *echo.Echo, d Deps) {
    mws := guarded(d, nil)
    g := e.Group("/v1/courts")
    h := d.Courts

    g.GET("", h.List, mws...)
    g.GET("/available", h.Available, mws...)
    g.GET("/:id", h.Get, mws...)
    g.GET("/:id/time-slots", h.TimeSlots, mws...)
    g.GET("/:id/reservations", d.Reservations.ListByCourt("id"), guarded(d, authenticated(d))...)
}
