package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the custom JWT claims issued at login
type Claims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}
