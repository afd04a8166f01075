package model

import (
	"fmt"
	"time"
)

// User represents an authentication user (separate from owner
// addresses in the registry).
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles. Admins mint, burn and configure sales; users operate on
// assets they own.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// RoleAtLeast checks if role meets or exceeds the minimum required
// role. Unknown roles fail closed.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin: 2,
		RoleUser:  1,
	}
	r, ok := levels[role]
	if !ok {
		return false
	}
	m, ok := levels[minimum]
	if !ok {
		return false
	}
	return r >= m
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ValidatePassword checks a password against the registry's policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
