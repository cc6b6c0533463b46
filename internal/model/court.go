package model

import "time"

// Court categories.
const (
    CategoryFootball   = "football"
    CategoryTennis     = "tennis"
    CategoryBasketball = "basketball"
    CategoryVolleyball = "volleyball"
)

// Court availability states.  Only CourtAvailable accepts new
// reservations.
const (
    CourtAvailable   = "available"
    CourtMaintenance = "maintenance"
    CourtReserved    = "reserved"
)

// Court is a bookable facility unit as stored in the `courts` table.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name, unique per facility.
//  Category    – one of the Category* constants.
//  Capacity    – maximum number of players (always > 0).
//  Status      – one of the Court* availability states.
//  Description – optional free text.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Court struct {
    ID          uint64    `db:"id" json:"id"`
    Name        string    `db:"name" json:"name"`
    Category    string    `db:"category" json:"category"`
    Capacity    uint32    `db:"capacity" json:"capacity"`
    Status      string    `db:"status" json:"status"`
    Description *string   `db:"description" json:"description,omitempty"`
    CreatedAt   time.Time `db:"created_at" json:"created_at"`
    UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ValidCategory reports whether s is a known court category.
func ValidCategory(s string) bool {
    switch s {
    case CategoryFootball, CategoryTennis, CategoryBasketball, CategoryVolleyball:
        return true
    }
    return false
}
