// Package seed loads the demo users, courts and time slots a fresh
// database needs before the API is useful.  Every write is an upsert so
// running it twice leaves the data unchanged.
package seed

import (
    "context"
    "fmt"

    "github.com/iliyamo/court-reservation/internal/booking"
    "github.com/iliyamo/court-reservation/internal/model"
    "github.com/iliyamo/court-reservation/internal/utils"
)

// Writer is implemented by *repository.SQLStore.
type Writer interface {
    UpsertUser(ctx context.Context, u *model.User) error
    UpsertCourt(ctx context.Context, c *model.Court) error
    UpsertTimeSlot(ctx context.Context, s *model.TimeSlot) error
}

// Options controls password hashing for seeded users.
type Options struct {
    Password   string
    BcryptCost int
}

// Result lists what was written, with database IDs filled in.
type Result struct {
    Users  []model.User
    Courts []model.Court
    Slots  int
}

// Slots run hourly from open to close.
const (
    openAt  = 8 * 60
    closeAt = 22 * 60
)

func users() []model.User {
    return []model.User{
        {Email: "admin@courts.local", FirstName: "Ada", LastName: "Admin", Role: model.RoleAdmin},
        {Email: "player1@courts.local", FirstName: "Pat", LastName: "Player", Role: model.RoleUser},
        {Email: "player2@courts.local", FirstName: "Sam", LastName: "Setter", Role: model.RoleUser},
    }
}

func courts() []model.Court {
    desc := func(s string) *string { return &s }
    return []model.Court{
        {Name: "Football 1", Category: model.CategoryFootball, Capacity: 14, Status: model.CourtAvailable, Description: desc("Synthetic grass, floodlit")},
        {Name: "Tennis 1", Category: model.CategoryTennis, Capacity: 4, Status: model.CourtAvailable, Description: desc("Clay")},
        {Name: "Basketball 1", Category: model.CategoryBasketball, Capacity: 10, Status: model.CourtAvailable},
        {Name: "Volleyball 1", Category: model.CategoryVolleyball, Capacity: 12, Status: model.CourtMaintenance, Description: desc("Net replacement pending")},
    }
}

// Run writes the seed data through w.
func Run(ctx context.Context, w Writer, opts Options) (Result, error) {
    var out Result
    if opts.Password == "" {
        opts.Password = "password123"
    }
    hash, err := utils.HashPassword(opts.Password, opts.BcryptCost)
    if err != nil {
        return out, fmt.Errorf("hash password: %w", err)
    }

    for _, u := range users() {
        u.PasswordHash = hash
        if err := w.UpsertUser(ctx, &u); err != nil {
            return out, err
        }
        out.Users = append(out.Users, u)
    }

    for _, c := range courts() {
        if err := w.UpsertCourt(ctx, &c); err != nil {
            return out, err
        }
        out.Courts = append(out.Courts, c)
        for start := openAt; start < closeAt; start += 60 {
            slot := model.TimeSlot{CourtID: c.ID, StartTime: booking.FormatClock(start), EndTime: booking.FormatClock(start + 60)}
            if err := w.UpsertTimeSlot(ctx, &slot); err != nil {
                return out, err
            }
            out.Slots++
        }
    }
    return out, nil
}
