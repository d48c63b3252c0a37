package auth

import (
	"context"
	"strings"

	"github.com/benvon/ordia/internal/apperr"
	"github.com/benvon/ordia/internal/models"
	"github.com/google/uuid"
)

// UserStore is the subset of the user repository the resolver needs
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Resolver maps credentials to active users
type Resolver struct {
	tokens *TokenIssuer
	users  UserStore
}

// NewResolver creates a new identity resolver
func NewResolver(tokens *TokenIssuer, users UserStore) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve returns the active user a bearer token belongs to
func (r *Resolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	userID, err := r.tokens.Decode(token)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindUnauthorized, Message: "Could not validate credentials", Err: err}
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("Could not validate credentials")
		}
		return nil, apperr.Internal("Failed to load user", err)
	}
	if !user.IsActive {
		return nil, apperr.InactiveAccount()
	}
	return user, nil
}

// Authenticate checks an email and password pair. Unknown emails and wrong
// passwords are indistinguishable. The active flag is checked only after the
// password matched.
func (r *Resolver) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("Incorrect email or password")
		}
		return nil, apperr.Internal("Failed to load user", err)
	}
	if !VerifyPassword(password, user.HashedPassword) {
		return nil, apperr.Unauthorized("Incorrect email or password")
	}
	if !user.IsActive {
		return nil, apperr.InactiveAccount()
	}
	return user, nil
}

// NormalizeEmail lowercases and trims an email address for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
