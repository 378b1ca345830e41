package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/Gaganb-30/cloud-store/pkg/model"
)

// TokenType distinguishes access tokens from refresh tokens within the
// same Claims shape, so a refresh token cannot be replayed as an access
// token or vice versa.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the JWT payload carried for an authenticated Principal.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string       `json:"user_id"`
	Role      model.Role   `json:"role"`
	Status    model.Status `json:"status"`
	TokenType TokenType    `json:"token_type"`
}

// IsAccessToken reports whether these claims were issued as an access token.
func (c *Claims) IsAccessToken() bool {
	return c.TokenType == TokenTypeAccess
}

// IsRefreshToken reports whether these claims were issued as a refresh token.
func (c *Claims) IsRefreshToken() bool {
	return c.TokenType == TokenTypeRefresh
}

// IsAdmin reports whether the claims carry the admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

// Principal reconstructs the Principal these claims were issued for.
func (c *Claims) Principal() model.Principal {
	return model.Principal{
		UserID: c.UserID,
		Role:   c.Role,
		Status: c.Status,
	}
}
