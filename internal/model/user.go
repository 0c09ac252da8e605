package model

import (
	"strings"
	"time"
)

// Role is the authorization capability attached to a user.  Every user
// holds exactly one role; the admin dashboard routes require RoleAdmin.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// RoleForEmail returns RoleAdmin when email matches the configured admin
// address (case-insensitive) and RoleCustomer otherwise.
func RoleForEmail(email, adminEmail string) Role {
	e := strings.TrimSpace(email)
	a := strings.TrimSpace(adminEmail)
	if e != "" && a != "" && strings.EqualFold(e, a) {
		return RoleAdmin
	}
	return RoleCustomer
}

// User represents an application user record as stored in the
// `users` table.  Users are created on their first OAuth sign-in and are
// never deleted by the application.
//
// Fields:
//  ID        – uuid primary key.
//  Email     – unique, lower-cased email address verified by the provider.
//  Name      – display name reported by the provider.
//  Role      – CUSTOMER or ADMIN.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of the last sign-in refresh.
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// UserSummary is the minimal user projection attached to bookings and
// queries in admin listings.
type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
type RefreshToken struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}
