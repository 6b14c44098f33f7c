package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/anonto42/nano-chat/backend/internal/auth"
	"github.com/anonto42/nano-chat/backend/internal/models"
	"github.com/anonto42/nano-chat/backend/pkg/logging"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// UserContextKey is the echo.Context key holding the verified claims.
const UserContextKey = "user"

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.JwtCustomClaims, error)
}

// JWTAuthMiddleware checks for a valid JWT and extracts user claims.
// A missing token is 401; a token that fails verification is 403.
func JWTAuthMiddleware(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := bearerToken(c.Request())
			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization token")
			}

			ctx := c.Request().Context()
			claims, err := tokens.Verify(ctx, tokenString)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrTokenRevoked) {
					return echo.NewHTTPError(http.StatusForbidden, "invalid or expired token")
				}
				logging.FromContext(ctx).Error("token verification failed", slog.Any("error", err))
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}

			// Store user claims in context
			c.Set(UserContextKey, claims)
			logger := logging.FromContext(ctx).With("user_id", claims.UserID)
			c.SetRequest(c.Request().WithContext(logging.WithLogger(ctx, logger)))

			return next(c)
		}
	}
}

// CurrentUser returns the claims stored by JWTAuthMiddleware.
func CurrentUser(c echo.Context) (*models.JwtCustomClaims, error) {
	claims, ok := c.Get(UserContextKey).(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authorization token")
	}
	return claims, nil
}

// bearerToken reads "Authorization: Bearer <token>". Browsers cannot set
// headers on a WebSocket handshake, so upgrades may pass ?token= instead.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.Fields(header)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	if websocket.IsWebSocketUpgrade(r) {
		return strings.TrimSpace(r.URL.Query().Get("token"))
	}
	return ""
}
