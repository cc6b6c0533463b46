package middleware

import (
    "strconv"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/court-reservation/internal/metrics"
)

const headerRequestID = "X-Request-ID"

// RequestLogger assigns every request an ID (reusing an inbound
// X-Request-ID), echoes it on the response and logs one line per request.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            id := c.Request().Header.Get(headerRequestID)
            if id == "" {
                id = uuid.NewString()
            }
            c.Set(ctxRequestID, id)
            c.Response().Header().Set(headerRequestID, id)

            err := next(c)
            if err != nil {
                c.Error(err)
            }

            fields := []zap.Field{
                zap.String("request_id", id),
                zap.String("method", c.Request().Method),
                zap.String("path", c.Path()),
                zap.Int("status", c.Response().Status),
                zap.Duration("latency", time.Since(start)),
                zap.String("remote_ip", c.RealIP()),
            }
            switch s := c.Response().Status; {
            case s >= 500:
                log.Error("request", fields...)
            case s >= 400:
                log.Warn("request", fields...)
            default:
                log.Info("request", fields...)
            }
            return nil
        }
    }
}

// Metrics records request counts and latency per route template.
func Metrics() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            path := c.Path()
            if path == "" {
                path = "unmatched"
            }
            metrics.RecordHTTPRequest(c.Request().Method, path, strconv.Itoa(c.Response().Status), time.Since(start).Seconds())
            return nil
        }
    }
}
