package handlers

import (
	"net/http"

	"github.com/anonto42/nano-chat/backend/internal/middleware"
	"github.com/anonto42/nano-chat/backend/internal/models"
	"github.com/anonto42/nano-chat/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:postId/comments", h.CreateComment)
	g.GET("/posts/:postId/comments", h.GetComments)
}

// CreateComment adds a comment by the caller to :postId
func (h *CommentHandler) CreateComment(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	postID, err := pathID(c, "postId")
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := validateRequest(c, &req); err != nil {
		return err
	}

	comment := &models.Comment{
		UserID: claims.UserID,
		PostID: postID,
		Body:   req.Comment,
	}
	if err := h.commentRepository.CreateComment(c.Request().Context(), comment); err != nil {
		return repositoryError(err, "post not found")
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": comment.ID, "message": "comment added"})
}

// GetComments lists the comments of :postId, oldest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	postID, err := pathID(c, "postId")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	exists, err := h.postRepository.PostExists(ctx, postID)
	if err != nil {
		return internalError(err)
	}
	if !exists {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}

	comments, err := h.commentRepository.ListComments(ctx, postID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, comments)
}
