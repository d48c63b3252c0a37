package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// SigningAlgorithm is the fixed algorithm used for access tokens
const SigningAlgorithm = jwa.HS256

// DefaultTokenTTL is the access token lifetime when none is configured
const DefaultTokenTTL = 30 * time.Minute

// ErrInvalidToken is returned for tokens with a bad signature, a malformed
// payload or an expiry in the past
var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer signs and verifies access tokens with a process-wide secret
type TokenIssuer struct {
	key []byte
	now func() time.Time
}

// TokenOption configures a TokenIssuer
type TokenOption func(*TokenIssuer)

// WithClock overrides the time source used for issuing and validating tokens
func WithClock(now func() time.Time) TokenOption {
	return func(i *TokenIssuer) {
		i.now = now
	}
}

// NewTokenIssuer creates a TokenIssuer for the given secret
func NewTokenIssuer(secret string, opts ...TokenOption) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret cannot be empty")
	}
	issuer := &TokenIssuer{
		key: []byte(secret),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(issuer)
	}
	return issuer, nil
}

// Issue returns a signed token whose subject is userID and which expires ttl from now
func (i *TokenIssuer) Issue(userID uuid.UUID, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := i.now()
	token, err := jwt.NewBuilder().
		Subject(userID.String()).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(SigningAlgorithm, i.key))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// Decode verifies token and returns its subject
func (i *TokenIssuer) Decode(token string) (uuid.UUID, error) {
	parsed, err := jwt.Parse([]byte(token),
		jwt.WithKey(SigningAlgorithm, i.key),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(i.now)),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if parsed.Expiration().IsZero() {
		return uuid.Nil, fmt.Errorf("%w: missing exp claim", ErrInvalidToken)
	}

	userID, err := uuid.Parse(parsed.Subject())
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid subject", ErrInvalidToken)
	}
	return userID, nil
}
