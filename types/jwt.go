package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims carried by a session token
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
