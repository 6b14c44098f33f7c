package handlers

import (
	"net/http"

	"github.com/anonto42/nano-chat/backend/internal/middleware"
	"github.com/anonto42/nano-chat/backend/internal/models"
	"github.com/anonto42/nano-chat/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository repositories.LikeRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository) *LikeHandler {
	return &LikeHandler{likeRepository: likeRepo}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:postId/like", h.ToggleLike)
}

// ToggleLike likes the post if the caller has not, otherwise unlikes it
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	postID, err := pathID(c, "postId")
	if err != nil {
		return err
	}

	liked, err := h.likeRepository.ToggleLike(c.Request().Context(), claims.UserID, postID)
	if err != nil {
		return repositoryError(err, "post not found")
	}

	resp := models.LikeToggleResponse{Liked: liked, Message: "post unliked"}
	if liked {
		resp.Message = "post liked"
	}
	return c.JSON(http.StatusOK, resp)
}
