package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: the user id plus the standard registered claims,
// of which only exp is set. On the wire: {"user_id": 42, "exp": 1700000000}.
type Claims struct {
	// UserID identifies the user the token was issued to.
	UserID int64 `json:"user_id"`

	jwt.RegisteredClaims
}

// Expiry returns the exp claim as a time.Time, or the zero time when absent.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
