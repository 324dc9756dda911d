package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the per-request caller description the core operations consume.
type Identity struct {
	UserID   uuid.UUID
	IsSeller bool
	IsStaff  bool
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	IsSeller bool      `json:"is_seller"`
	IsStaff  bool      `json:"is_staff"`
	jwt.RegisteredClaims
}

// Identity converts the claims into the request identity value.
func (c AccessTokenClaims) Identity() Identity {
	return Identity{UserID: c.UserID, IsSeller: c.IsSeller, IsStaff: c.IsStaff}
}
