package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"noticehub/internal/app/user"
	"noticehub/internal/pkg/auth/jwt"
	"noticehub/internal/pkg/errs"
)

// TokenDecoder verifies bearer tokens.
type TokenDecoder interface {
	Decode(token string) (*jwt.Claims, error)
}

// UserFinder resolves users by id.
type UserFinder interface {
	GetUserByID(ctx context.Context, id int64) (*user.User, error)
}

// Identity is an authorized user plus the expiry of the token that proved it.
type Identity struct {
	User      *user.User
	ExpiresAt time.Time
}

// Authorizer gates protected operations behind a valid token.
type Authorizer struct {
	users  UserFinder
	tokens TokenDecoder
}

// NewAuthorizer returns an Authorizer.
func NewAuthorizer(users UserFinder, tokens TokenDecoder) *Authorizer {
	return &Authorizer{users: users, tokens: tokens}
}

// Authorize resolves an Authorization header value to the user it names.
func (a *Authorizer) Authorize(ctx context.Context, headerValue string) (*user.User, error) {
	id, err := a.Identify(ctx, headerValue)
	if err != nil {
		return nil, err
	}
	return id.User, nil
}

// Identify is Authorize plus the token expiry, for long-lived connections that must
// close when their credential lapses.
func (a *Authorizer) Identify(ctx context.Context, headerValue string) (*Identity, error) {
	token, err := BearerToken(headerValue)
	if err != nil {
		return nil, err
	}

	claims, err := a.tokens.Decode(token)
	if err != nil {
		return nil, err
	}

	u, err := a.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, errs.NewError(errs.ErrTokenUserNotFound).Wrap(err)
		}
		return nil, fmt.Errorf("authorize: %w", err)
	}

	return &Identity{User: u, ExpiresAt: claims.Expiry()}, nil
}

// BearerToken extracts the token from a "Bearer <token>" header value.
// No value at all is ErrMissingToken; any other scheme or shape is ErrTokenMalformed.
func BearerToken(headerValue string) (string, error) {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue == "" {
		return "", errs.NewError(errs.ErrMissingToken)
	}

	scheme, token, found := strings.Cut(headerValue, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", errs.NewError(errs.ErrTokenMalformed)
	}

	token = strings.TrimSpace(token)
	if !found || token == "" {
		return "", errs.NewError(errs.ErrMissingToken)
	}
	if strings.ContainsAny(token, " \t") {
		return "", errs.NewError(errs.ErrTokenMalformed)
	}

	return token, nil
}
