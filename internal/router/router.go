package router

import (
	"log/slog"

	"github.com/anonto42/nano-chat/backend/internal/auth"
	"github.com/anonto42/nano-chat/backend/internal/handlers"
	"github.com/anonto42/nano-chat/backend/internal/hub"
	"github.com/anonto42/nano-chat/backend/internal/middleware"
	"github.com/anonto42/nano-chat/backend/internal/repositories"
	"github.com/anonto42/nano-chat/backend/pkg/config"
	"github.com/anonto42/nano-chat/backend/validators"
	"github.com/labstack/echo/v4"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Users       repositories.UserRepository
	Friendships repositories.FriendshipRepository
	Posts       repositories.PostRepository
	Likes       repositories.LikeRepository
	Comments    repositories.CommentRepository
	Messages    repositories.MessageRepository

	Tokens *auth.TokenManager
	Hub    *hub.Hub

	// AuthLimiter throttles the unauthenticated routes; nil disables it.
	AuthLimiter middleware.Limiter
	// Firebase enables federated login; nil disables it.
	Firebase handlers.IdentityVerifier
	Pingers  map[string]handlers.Pinger

	BcryptCost  int
	CORSOrigins []string
}

// New builds a fully configured Echo instance.
func New(deps *Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	config.SetupMiddleware(e, deps.CORSOrigins)
	SetupRoutes(e, deps)
	return e
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps *Dependencies) {
	handlers.NewHealthHandler(deps.Pingers).RegisterHealthRoutes(e)

	// --- Unprotected routes for authentication ---
	public := e.Group("/api")
	if deps.AuthLimiter != nil {
		public = e.Group("/api", middleware.RateLimitMiddleware(deps.AuthLimiter))
	}
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens, deps.Firebase, deps.BcryptCost)
	authHandler.RegisterAuthRoutes(public)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api", middleware.JWTAuthMiddleware(deps.Tokens))
	authHandler.RegisterSessionRoutes(api)

	handlers.NewUserHandler(deps.Users, deps.Friendships).RegisterUserRoutes(api)
	handlers.NewFriendshipHandler(deps.Friendships).RegisterFriendshipRoutes(api)
	handlers.NewPostHandler(deps.Posts).RegisterPostRoutes(api)
	handlers.NewLikeHandler(deps.Likes).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(deps.Comments, deps.Posts).RegisterCommentRoutes(api)
	handlers.NewMessageHandler(deps.Messages, deps.Hub).RegisterMessageRoutes(api)
	handlers.NewPushHandler(deps.Hub, deps.CORSOrigins).RegisterPushRoutes(api)

	slog.Info("routes configured",
		slog.Bool("rate_limited_auth", deps.AuthLimiter != nil),
		slog.Bool("firebase_login", deps.Firebase != nil),
	)
}
