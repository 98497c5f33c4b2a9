// Package model defines data structures for the knowledge assistant.
package model

import (
	"time"
)

// Role values assigned to users.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User represents an authenticated user of the system.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"default:staff" json:"role"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is the request to authenticate a user.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserStats is the admin view of a single user.
type UserStats struct {
	ID                uint       `json:"id"`
	Email             string     `json:"email"`
	Role              string     `json:"role"`
	ConversationCount int64      `json:"conversation_count"`
	LastActive        *time.Time `json:"last_active,omitempty"`
}
