package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/anonto42/nano-chat/backend/internal/middleware"
	"github.com/anonto42/nano-chat/backend/internal/models"
	"github.com/anonto42/nano-chat/backend/internal/repositories"
	"github.com/anonto42/nano-chat/backend/pkg/logging"
	"github.com/labstack/echo/v4"
)

// FriendshipHandler handles HTTP requests related to friendships
type FriendshipHandler struct {
	friendshipRepository repositories.FriendshipRepository
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(friendshipRepo repositories.FriendshipRepository) *FriendshipHandler {
	return &FriendshipHandler{friendshipRepository: friendshipRepo}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.GET("/friends", h.GetFriends)
	g.POST("/friends/request/:userId", h.SendFriendRequest)
	g.POST("/friends/accept/:userId", h.AcceptFriendRequest)
	g.DELETE("/friends/:userId", h.RemoveFriend)
}

// SendFriendRequest creates a pending request from the caller to :userId
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	targetID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	if targetID == claims.UserID {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot send a friend request to yourself")
	}

	ctx := c.Request().Context()
	err = h.friendshipRepository.CreateRequest(ctx, models.NewFriendRequest(claims.UserID, targetID))
	switch {
	case err == nil:
	case repositories.IsDuplicate(err, ""):
		return echo.NewHTTPError(http.StatusConflict, "friend request already exists")
	case errors.Is(err, repositories.ErrMissingReference):
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	default:
		return internalError(err)
	}

	logging.FromContext(ctx).Info("friend request sent", slog.Uint64("target_id", uint64(targetID)))
	return c.JSON(http.StatusCreated, echo.Map{"message": "friend request sent"})
}

// AcceptFriendRequest accepts the pending request :userId sent to the caller
func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	requesterID, err := pathID(c, "userId")
	if err != nil {
		return err
	}

	if err := h.friendshipRepository.AcceptRequest(c.Request().Context(), claims.UserID, requesterID); err != nil {
		return repositoryError(err, "friend request not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "friend request accepted"})
}

// RemoveFriend deletes the relationship with :userId in whatever state it is
func (h *FriendshipHandler) RemoveFriend(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	otherID, err := pathID(c, "userId")
	if err != nil {
		return err
	}

	if err := h.friendshipRepository.RemoveFriendship(c.Request().Context(), claims.UserID, otherID); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "friend removed"})
}

// GetFriends lists every relationship of the caller, newest first
func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	friends, err := h.friendshipRepository.ListFriendships(c.Request().Context(), claims.UserID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, friends)
}
