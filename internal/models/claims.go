package models

import "github.com/golang-jwt/jwt/v5"

// Roles recognized by the API layer.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserClaims carries the identity asserted by the external identity
// provider. The wallet service trusts AccountID as given and performs no
// authentication of its own.
type UserClaims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
}

// IsAdmin reports whether the claims carry the admin role.
func (c *UserClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
