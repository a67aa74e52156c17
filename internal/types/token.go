package types

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/pageza/tastybytes/backend/internal/models"
)

// TokenClaims represents the claims in a JWT token
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID string      `json:"user_id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
}

// User rebuilds the user identified by the claims.
func (c *TokenClaims) User() *models.User {
	return &models.User{
		ID:    c.UserID,
		Name:  c.Name,
		Email: c.Email,
		Role:  c.Role,
	}
}
