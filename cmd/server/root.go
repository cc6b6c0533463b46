package main

import (
    "github.com/jmoiron/sqlx"
    "github.com/spf13/cobra"
    "go.uber.org/zap"

    "github.com/iliyamo/court-reservation/internal/config"
    "github.com/iliyamo/court-reservation/internal/database"
    "github.com/iliyamo/court-reservation/internal/logger"
)

func newRootCmd() *cobra.Command {
    root := &cobra.Command{
        Use:           "courts",
        Short:         "Court reservation API, migrations, seed data and event consumer",
        SilenceUsage:  true,
        SilenceErrors: true,
    }
    root.AddCommand(newServeCmd())
    root.AddCommand(newMigrateCmd())
    root.AddCommand(newSeedCmd())
    root.AddCommand(newConsumeCmd())
    return root
}

// env is what every subcommand starts from.
type env struct {
    cfg config.Config
    log *zap.Logger
}

func loadEnv() (*env, error) {
    cfg, err := config.Load()
    if err != nil {
        return nil, err
    }
    log, err := logger.New(cfg.Env, cfg.LogLevel)
    if err != nil {
        return nil, err
    }
    return &env{cfg: cfg, log: log}, nil
}

func (e *env) openDB() (*sqlx.DB, error) {
    c := e.cfg
    return database.Open(database.DSN(c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName))
}

// withDB loads configuration, opens the database and runs fn.
func withDB(fn func(e *env, db *sqlx.DB) error) error {
    e, err := loadEnv()
    if err != nil {
        return err
    }
    defer func() { _ = e.log.Sync() }()
    db, err := e.openDB()
    if err != nil {
        return err
    }
    defer db.Close()
    return fn(e, db)
}
