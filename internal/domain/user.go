package domain

import (
	"strings"
	"time"
)

// Role enumerates the closed set of user roles. Role is part of the
// authentication lookup key and is immutable after registration.
type Role string

const (
	RoleClient  Role = "Client"
	RoleSupport Role = "Support"
	RoleAdmin   Role = "Admin"
)

// ParseRole validates a raw role value against the closed set.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleClient, RoleSupport, RoleAdmin:
		return Role(raw), true
	}
	return "", false
}

// User is an account in the credential store. Usernames are stored
// upper-cased and are globally unique across roles.
type User struct {
	ID             int64
	Username       string
	HashedPassword string
	Role           Role
	CreatedAt      time.Time
}

// NormalizeUsername applies the canonical upper-case form used for
// storage and every credential lookup.
func NormalizeUsername(username string) string {
	return strings.ToUpper(strings.TrimSpace(username))
}
