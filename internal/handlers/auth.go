package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/anonto42/nano-chat/backend/internal/auth"
	"github.com/anonto42/nano-chat/backend/internal/middleware"
	"github.com/anonto42/nano-chat/backend/internal/models"
	"github.com/anonto42/nano-chat/backend/internal/repositories"
	"github.com/anonto42/nano-chat/backend/pkg/firebase"
	"github.com/anonto42/nano-chat/backend/pkg/logging"
	"github.com/labstack/echo/v4"
)

// TokenIssuer signs and revokes session tokens.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
	Revoke(ctx context.Context, claims *models.JwtCustomClaims) error
}

// IdentityVerifier checks federated ID tokens.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebase.Identity, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	tokens         TokenIssuer
	firebase       IdentityVerifier
	bcryptCost     int
}

// NewAuthHandler creates a new AuthHandler. firebaseVerifier may be nil, in
// which case federated login is not offered.
func NewAuthHandler(userRepo repositories.UserRepository, tokens TokenIssuer, firebaseVerifier IdentityVerifier, bcryptCost int) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		tokens:         tokens,
		firebase:       firebaseVerifier,
		bcryptCost:     bcryptCost,
	}
}

// RegisterAuthRoutes registers the unauthenticated routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	if h.firebase != nil {
		g.POST("/auth/firebase-login", h.FirebaseLogin)
	}
}

// RegisterSessionRoutes registers routes that need a valid token
func (h *AuthHandler) RegisterSessionRoutes(g *echo.Group) {
	g.POST("/auth/logout", h.Logout)
}

// Register creates a local account
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRequest(c, &req); err != nil {
		return err
	}

	hashed, err := auth.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		return internalError(err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		Status:   models.DefaultStatus,
	}
	ctx := c.Request().Context()
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return repositoryError(err, "user not found")
	}

	logging.FromContext(ctx).Info("user registered", slog.Uint64("user_id", uint64(user.ID)))
	return c.JSON(http.StatusCreated, echo.Map{"message": "user created"})
}

// Login exchanges email and password for a token
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := validateRequest(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		return repositoryError(err, "user not found")
	}

	if err := auth.CheckPassword(user.Password, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid password")
		}
		return internalError(err)
	}
	return h.respondWithToken(c, user)
}

// FirebaseLogin signs in the existing account whose email matches a verified
// Firebase ID token. It never creates accounts.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := validateRequest(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	identity, err := h.firebase.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		logging.FromContext(ctx).Warn("firebase token rejected", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid firebase id token")
	}
	if !identity.EmailVerified {
		return echo.NewHTTPError(http.StatusForbidden, "email not verified")
	}

	user, err := h.userRepository.GetUserByEmail(ctx, identity.Email)
	if err != nil {
		return repositoryError(err, "user not found")
	}

	switch {
	case user.FirebaseUID == nil:
		if err := h.userRepository.LinkFirebaseUID(ctx, user.ID, identity.UID); err != nil {
			return repositoryError(err, "user not found")
		}
		uid := identity.UID
		user.FirebaseUID = &uid
	case *user.FirebaseUID != identity.UID:
		return echo.NewHTTPError(http.StatusForbidden, "account is linked to a different firebase identity")
	}
	return h.respondWithToken(c, user)
}

// Logout revokes the caller's token
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	if err := h.tokens.Revoke(c.Request().Context(), claims); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) respondWithToken(c echo.Context, user *models.User) error {
	token, err := h.tokens.Issue(user)
	if err != nil {
		return internalError(err)
	}
	logging.FromContext(c.Request().Context()).Info("user logged in", slog.Uint64("user_id", uint64(user.ID)))
	return c.JSON(http.StatusOK, models.LoginResponse{Token: token, User: user.Profile()})
}
