package model

import "time"

// User roles carried in the JWT "role" claim.
const (
    RoleAdmin = "admin"
    RoleUser  = "user"
)

// User represents an application user record as stored in the
// `users` table.  The password hash never leaves the repository layer in
// API responses.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  FirstName    – given name.
//  LastName     – family name.
//  Phone        – optional contact number.
//  Role         – RoleAdmin or RoleUser.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    `db:"id" json:"id"`
    Email        string    `db:"email" json:"email"`
    PasswordHash string    `db:"password_hash" json:"-"`
    FirstName    string    `db:"first_name" json:"first_name"`
    LastName     string    `db:"last_name" json:"last_name"`
    Phone        *string   `db:"phone" json:"phone,omitempty"`
    Role         string    `db:"role" json:"role"`
    CreatedAt    time.Time `db:"created_at" json:"created_at"`
    UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
