/*
Package jwt issues and verifies the service's bearer tokens.

Tokens are HS256-signed JWTs carrying a user id and an expiry. They are stateless:
validity depends only on the signing secret and the clock, so there is no revocation
besides expiry, and changing the secret invalidates every outstanding token.
*/
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"noticehub/internal/pkg/errs"
)

// DefaultTTL is the lifetime used when Encode is called with a non-positive ttl.
const DefaultTTL = 24 * time.Hour

// ErrEmptySecret is returned by NewCodec when no signing secret is configured.
var ErrEmptySecret = errors.New("jwt: signing secret must not be empty")

// Codec signs and verifies tokens with a single process-wide secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock replaces time.Now as the codec's time source.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec returns a Codec for secret.
func NewCodec(secret string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	c := &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Encode returns a signed token for userID that expires ttl from now.
func (c *Codec) Encode(userID int64, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(c.now().Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies tokenString and returns its claims. Failures are *errs.CustomError
// of kind invalid_token: ErrTokenExpired when exp is not in the future,
// ErrTokenSignatureInvalid when the signature or algorithm does not match,
// and ErrTokenMalformed for everything else.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	switch {
	case err == nil && token.Valid:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, errs.NewError(errs.ErrTokenExpired).Wrap(err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, errs.NewError(errs.ErrTokenSignatureInvalid).Wrap(err)
	case err != nil:
		return nil, errs.NewError(errs.ErrTokenMalformed).Wrap(err)
	default:
		return nil, errs.NewError(errs.ErrTokenMalformed)
	}

	if claims.UserID <= 0 {
		return nil, errs.NewError(errs.ErrTokenMalformed)
	}

	return claims, nil
}
