package main

import (
    "fmt"

    "github.com/jmoiron/sqlx"
    "github.com/spf13/cobra"

    "github.com/iliyamo/court-reservation/internal/database"
)

func newMigrateCmd() *cobra.Command {
    cmd := &cobra.Command{
        Use:   "migrate",
        Short: "Manage the database schema",
    }
    cmd.AddCommand(&cobra.Command{
        Use:   "up",
        Short: "Apply all pending migrations",
        RunE: func(cmd *cobra.Command, args []string) error {
            return withDB(func(e *env, db *sqlx.DB) error {
                if err := database.MigrateUp(db); err != nil {
                    return err
                }
                e.log.Info("migrations applied")
                return nil
            })
        },
    })

    var steps int
    down := &cobra.Command{
        Use:   "down",
        Short: "Roll back migrations",
        RunE: func(cmd *cobra.Command, args []string) error {
            return withDB(func(e *env, db *sqlx.DB) error {
                return database.MigrateDown(db, steps)
            })
        },
    }
    down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
    cmd.AddCommand(down)

    cmd.AddCommand(&cobra.Command{
        Use:   "version",
        Short: "Print the applied schema version",
        RunE: func(cmd *cobra.Command, args []string) error {
            return withDB(func(e *env, db *sqlx.DB) error {
                v, dirty, err := database.MigrationVersion(db)
                if err != nil {
                    return err
                }
                fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
                return nil
            })
        },
    })
    return cmd
}
