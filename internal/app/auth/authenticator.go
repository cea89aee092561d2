/*
Package auth turns credentials into tokens and tokens back into users.

Authenticator handles login and signup. Authorizer resolves the bearer token on every
other request, and RequireUser is the HTTP middleware that puts its result in the
request context.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"noticehub/internal/app/user"
	"noticehub/internal/pkg/errs"
	"noticehub/internal/pkg/logx"
)

const (
	// MinPasswordLen and MaxPasswordLen bound signup passwords. bcrypt ignores bytes past 72.
	MinPasswordLen = 6
	MaxPasswordLen = 72
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// TokenIssuer mints bearer tokens.
type TokenIssuer interface {
	Encode(userID int64, ttl time.Duration) (string, error)
}

// Authenticator validates credentials and mints tokens.
type Authenticator struct {
	users  user.Repository
	tokens TokenIssuer
	ttl    time.Duration
	cost   int

	// dummyHash is compared against when the email is unknown so both failure
	// paths spend the same bcrypt time.
	dummyHash []byte
}

// NewAuthenticator builds an Authenticator. cost is the bcrypt cost for new hashes;
// values outside bcrypt's range fall back to bcrypt.DefaultCost.
func NewAuthenticator(users user.Repository, tokens TokenIssuer, ttl time.Duration, cost int) (*Authenticator, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}

	return &Authenticator{
		users:     users,
		tokens:    tokens,
		ttl:       ttl,
		cost:      cost,
		dummyHash: dummy,
	}, nil
}

// Authenticate returns a token for the user with the given email and password.
// An unknown email and a wrong password fail identically with ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (string, error) {
	u, err := a.users.GetUserByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			return "", fmt.Errorf("authenticate: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
		logx.Warn("login: unknown email")
		return "", errs.NewError(errs.ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		logx.Warn("login: password mismatch", "user_id", u.ID)
		return "", errs.NewError(errs.ErrInvalidCredentials)
	}

	token, err := a.tokens.Encode(u.ID, a.ttl)
	if err != nil {
		return "", fmt.Errorf("authenticate: issue token: %w", err)
	}

	return token, nil
}

// Register creates an account and returns it with a fresh token.
func (a *Authenticator) Register(ctx context.Context, email, password string) (*user.User, string, error) {
	email = user.NormalizeEmail(email)
	if len(email) > 254 || !emailRegex.MatchString(email) {
		return nil, "", errs.NewError(errs.ErrInvalidEmail)
	}

	if n := utf8.RuneCountInString(password); n < MinPasswordLen || len(password) > MaxPasswordLen {
		return nil, "", errs.NewError(errs.ErrInvalidPassword, MinPasswordLen, MaxPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return nil, "", fmt.Errorf("register: hash password: %w", err)
	}

	u, err := a.users.CreateUser(ctx, email, string(hash))
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			logx.Warn("registration conflict: email already exists")
			return nil, "", errs.NewError(errs.ErrUserAlreadyExists)
		}
		return nil, "", fmt.Errorf("register: %w", err)
	}

	token, err := a.tokens.Encode(u.ID, a.ttl)
	if err != nil {
		return nil, "", fmt.Errorf("register: issue token: %w", err)
	}

	return u, token, nil
}
