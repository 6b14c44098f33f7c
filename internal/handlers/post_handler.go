package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/nano-chat/backend/internal/middleware"
	"github.com/anonto42/nano-chat/backend/internal/models"
	"github.com/anonto42/nano-chat/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const maxPostsPageSize = 100

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository) *PostHandler {
	return &PostHandler{postRepository: postRepo}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts", h.GetPosts)
	g.POST("/posts", h.CreatePost)
}

// GetPosts returns the feed, newest first. limit and offset are optional.
func (h *PostHandler) GetPosts(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	if limit > maxPostsPageSize {
		limit = maxPostsPageSize
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}

	posts, err := h.postRepository.ListPosts(c.Request().Context(), claims.UserID, limit, offset)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// CreatePost publishes a post authored by the caller
func (h *PostHandler) CreatePost(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := validateRequest(c, &req); err != nil {
		return err
	}

	post := &models.Post{
		UserID:  claims.UserID,
		Content: req.Content,
		Image:   nilIfBlank(req.Image),
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return repositoryError(err, "user not found")
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": post.ID, "message": "post created"})
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return n, nil
}
