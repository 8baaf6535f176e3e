package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the identity carried by the backend-issued token.
type SessionClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	SchoolID string   `json:"school_id,omitempty"`
	jwt.RegisteredClaims
}

// SessionInfo is what the session endpoint reveals about the caller.
type SessionInfo struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	SchoolID string   `json:"school_id,omitempty"`
}
