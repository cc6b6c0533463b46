package main

import (
    "fmt"

    "github.com/jmoiron/sqlx"
    "github.com/spf13/cobra"
    "go.uber.org/zap"

    "github.com/iliyamo/court-reservation/internal/repository"
    "github.com/iliyamo/court-reservation/internal/seed"
    "github.com/iliyamo/court-reservation/internal/utils"
)

func newSeedCmd() *cobra.Command {
    var (
        password string
        tokens   bool
    )
    cmd := &cobra.Command{
        Use:   "seed",
        Short: "Load demo users, courts and time slots",
        RunE: func(cmd *cobra.Command, args []string) error {
            return withDB(func(e *env, db *sqlx.DB) error {
                res, err := seed.Run(cmd.Context(), repository.NewStore(db), seed.Options{
                    Password:   password,
                    BcryptCost: e.cfg.BcryptCost,
                })
                if err != nil {
                    return err
                }
                e.log.Info("seed data loaded",
                    zap.Int("users", len(res.Users)),
                    zap.Int("courts", len(res.Courts)),
                    zap.Int("time_slots", res.Slots))

                if !tokens {
                    return nil
                }
                if e.cfg.JWTSecret == "" {
                    return fmt.Errorf("--tokens needs JWT_SECRET")
                }
                out := cmd.OutOrStdout()
                for _, u := range res.Users {
                    at, err := utils.NewAccessToken(e.cfg.JWTSecret, u.ID, u.Role, e.cfg.AccessTTLMin)
                    if err != nil {
                        return err
                    }
                    fmt.Fprintf(out, "%s\t%s\t%s\n", u.Email, u.Role, at.Token)
                }
                return nil
            })
        },
    }
    cmd.Flags().StringVar(&password, "password", "password123", "password given to every seeded user")
    cmd.Flags().BoolVar(&tokens, "tokens", false, "print a development access token for each seeded user")
    return cmd
}
