package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/nano-chat/backend/internal/middleware"
	"github.com/anonto42/nano-chat/backend/internal/models"
	"github.com/anonto42/nano-chat/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const (
	minSearchQueryLength = 2
	maxSearchResults     = 20
)

// UserHandler handles HTTP requests related to user profiles and discovery
type UserHandler struct {
	userRepository       repositories.UserRepository
	friendshipRepository repositories.FriendshipRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, friendshipRepo repositories.FriendshipRepository) *UserHandler {
	return &UserHandler{
		userRepository:       userRepo,
		friendshipRepository: friendshipRepo,
	}
}

// RegisterUserRoutes registers profile and directory routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/users", h.ListUsers)
	g.GET("/users/search", h.SearchUsers)
}

// GetProfile returns the caller's public profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), claims.UserID)
	if err != nil {
		return repositoryError(err, "user not found")
	}
	return c.JSON(http.StatusOK, user.Profile())
}

// UpdateProfile replaces the caller's editable profile fields
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Status = strings.TrimSpace(req.Status)
	if err := validateRequest(c, &req); err != nil {
		return err
	}
	if req.Status == "" {
		req.Status = models.DefaultStatus
	}

	ctx := c.Request().Context()
	update := &models.User{
		ID:       claims.UserID,
		Username: req.Username,
		Bio:      nilIfBlank(req.Bio),
		Status:   req.Status,
		Avatar:   nilIfBlank(req.Avatar),
	}
	if err := h.userRepository.UpdateProfile(ctx, update); err != nil {
		return repositoryError(err, "user not found")
	}

	user, err := h.userRepository.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return repositoryError(err, "user not found")
	}
	return c.JSON(http.StatusOK, user.Profile())
}

// ListUsers returns every user other than the caller
func (h *UserHandler) ListUsers(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	users, err := h.userRepository.ListOtherUsers(c.Request().Context(), claims.UserID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// SearchUsers finds users by username or email substring, annotated with the
// caller's relationship to each
func (h *UserHandler) SearchUsers(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	q := strings.TrimSpace(c.QueryParam("q"))
	if utf8.RuneCountInString(q) < minSearchQueryLength {
		return echo.NewHTTPError(http.StatusBadRequest, "search query must be at least 2 characters")
	}

	results, err := h.friendshipRepository.SearchUsers(c.Request().Context(), claims.UserID, q, maxSearchResults)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, results)
}

func nilIfBlank(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
