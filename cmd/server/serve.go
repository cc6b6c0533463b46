package main

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/spf13/cobra"
    "go.uber.org/zap"

    "github.com/iliyamo/court-reservation/internal/booking"
    "github.com/iliyamo/court-reservation/internal/config"
    "github.com/iliyamo/court-reservation/internal/database"
    "github.com/iliyamo/court-reservation/internal/handler"
    "github.com/iliyamo/court-reservation/internal/middleware"
    "github.com/iliyamo/court-reservation/internal/queue"
    "github.com/iliyamo/court-reservation/internal/repository"
    "github.com/iliyamo/court-reservation/internal/router"
)

func newServeCmd() *cobra.Command {
    var migrateUp bool

    cmd := &cobra.Command{
        Use:   "serve",
        Short: "Run the HTTP API",
        RunE: func(cmd *cobra.Command, args []string) error {
            env, err := loadEnv()
            if err != nil {
                return err
            }
            defer func() { _ = env.log.Sync() }()
            return serve(cmd.Context(), env, migrateUp)
        },
    }
    cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
    return cmd
}

func serve(parent context.Context, env *env, migrateUp bool) error {
    cfg, log := env.cfg, env.log
    ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
    defer stop()

    db, err := env.openDB()
    if err != nil {
        return err
    }
    defer db.Close()
    if migrateUp {
        if err := database.MigrateUp(db); err != nil {
            return err
        }
    }

    // Redis and RabbitMQ are optional: without them caching is off, rate
    // limiting is per process and no events are published.
    rdb := config.NewRedisClient(cfg.Redis)
    if rdb == nil {
        log.Warn("redis unreachable; response cache disabled, rate limiting is local", zap.String("addr", cfg.Redis.Address()))
    } else {
        defer rdb.Close()
    }

    var events booking.EventPublisher
    if cfg.AMQPURL != "" {
        pub, err := queue.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
        if err != nil {
            log.Warn("rabbitmq unreachable; reservation events disabled", zap.Error(err))
        } else {
            defer pub.Close()
            events = pub
        }
    }

    store := repository.NewStore(db)
    alloc := booking.NewAllocator(store, events, log)

    e := echo.New()
    e.HideBanner = true
    e.HidePort = true
    e.Use(echomw.Recover())
    e.Use(middleware.RequestLogger(log))
    e.Use(middleware.Metrics())

    router.RegisterRoutes(e, router.Deps{
        Reservations: handler.NewReservationHandler(alloc, log, cfg.RequestTimeout),
        Courts:       handler.NewCourtHandler(store, log, cfg.RequestTimeout),
        DB:           db,
        Cache:        middleware.NewResponseCache(cfg.Cache, rdb, log),
        RateLimit:    middleware.NewTokenBucket(cfg.RateLimit, rdb, log),
        AuthEnabled:  cfg.AuthEnabled,
        JWTSecret:    cfg.JWTSecret,
    })
    if !cfg.AuthEnabled {
        log.Warn("authentication disabled; every route is open")
    }

    errCh := make(chan error, 1)
    go func() {
        log.Info("listening", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
        if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
            errCh <- err
        }
        close(errCh)
    }()

    select {
    case err := <-errCh:
        return err
    case <-ctx.Done():
    }

    log.Info("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    return e.Shutdown(shutdownCtx)
}
