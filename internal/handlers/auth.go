package handlers

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/ordia/internal/apperr"
	"github.com/benvon/ordia/internal/auth"
	logpkg "github.com/benvon/ordia/internal/logger"
	"github.com/benvon/ordia/internal/metrics"
	"github.com/benvon/ordia/internal/models"
	"github.com/benvon/ordia/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// UserCreator stores new accounts
type UserCreator interface {
	Create(ctx context.Context, user *models.User) error
}

// Authenticator checks an email and password pair
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// TokenIssuer signs access tokens
type TokenIssuer interface {
	Issue(userID uuid.UUID, ttl time.Duration) (string, error)
}

// AuthHandler handles signup, login and the current user endpoint
type AuthHandler struct {
	users    UserCreator
	verifier Authenticator
	tokens   TokenIssuer
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users UserCreator, verifier Authenticator, tokens TokenIssuer, tokenTTL time.Duration, logger *zap.Logger) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = auth.DefaultTokenTTL
	}
	return &AuthHandler{
		users:    users,
		verifier: verifier,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// RegisterRoutes registers the public auth routes.
// The router should already have the /auth prefix.
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	handle(r, "/signup", h.Signup, http.MethodPost)
	handle(r, "/login", h.Login, http.MethodPost)
}

// RegisterUserRoutes registers the authenticated /users routes
func (h *AuthHandler) RegisterUserRoutes(r *mux.Router) {
	handle(r, "/me", h.GetMe, http.MethodGet)
}

// SignupRequest represents a signup request
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest holds the OAuth2 password-flow credentials. The username is
// the account email.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Signup creates a new account
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	req.Email = auth.NormalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		respondError(w, r, h.logger, apperr.Validation("Request validation failed", apperr.FieldError{
			Field:   "password",
			Message: err.Error(),
		}))
		return
	}
	if err != nil {
		respondError(w, r, h.logger, apperr.Internal("Failed to hash password", err))
		return
	}

	user := &models.User{
		ID:             uuid.New(),
		Email:          req.Email,
		HashedPassword: hashed,
		IsActive:       true,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		metrics.RecordAuthAttempt("signup", false)
		respondError(w, r, h.logger, err)
		return
	}

	metrics.RecordAuthAttempt("signup", true)
	h.logger.Info("user_signed_up",
		zap.String("user_id", user.ID.String()),
		zap.String("email", logpkg.MaskEmail(user.Email)),
	)
	respondJSON(w, http.StatusOK, user)
}

// Login exchanges credentials for a bearer token. Credentials arrive as an
// urlencoded form or, alternatively, as a JSON document.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := readLoginRequest(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	user, err := h.verifier.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		metrics.RecordAuthAttempt("login", false)
		if kind := apperr.KindOf(err); kind == apperr.KindUnauthorized || kind == apperr.KindInactiveAccount {
			h.logger.Warn("login_rejected",
				zap.String("email", logpkg.MaskEmail(auth.NormalizeEmail(req.Username))),
				zap.String("reason", kind.String()),
			)
		}
		respondError(w, r, h.logger, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, h.tokenTTL)
	if err != nil {
		metrics.RecordAuthAttempt("login", false)
		respondError(w, r, h.logger, apperr.Internal("Failed to issue token", err))
		return
	}

	metrics.RecordAuthAttempt("login", true)
	respondJSON(w, http.StatusOK, models.AccessToken{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// GetMe returns the authenticated user
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func readLoginRequest(r *http.Request) (LoginRequest, error) {
	var req LoginRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := decodeJSON(r, &req); err != nil {
			return req, err
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return req, err
		}
		return req, apperr.Validation("Invalid form body")
	}
	req.Username = strings.TrimSpace(r.PostForm.Get("username"))
	req.Password = r.PostForm.Get("password")
	return req, nil
}
