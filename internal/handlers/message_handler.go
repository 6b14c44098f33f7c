package handlers

import (
	"log/slog"
	"net/http"

	"github.com/anonto42/nano-chat/backend/internal/hub"
	"github.com/anonto42/nano-chat/backend/internal/middleware"
	"github.com/anonto42/nano-chat/backend/internal/models"
	"github.com/anonto42/nano-chat/backend/internal/repositories"
	"github.com/anonto42/nano-chat/backend/pkg/logging"
	"github.com/labstack/echo/v4"
)

// EventPublisher fans events out to connected clients.
type EventPublisher interface {
	Publish(event hub.Event, recipients ...uint) (int, error)
}

// MessageHandler handles HTTP requests related to direct messages
type MessageHandler struct {
	messageRepository repositories.MessageRepository
	publisher         EventPublisher
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageRepo repositories.MessageRepository, publisher EventPublisher) *MessageHandler {
	return &MessageHandler{
		messageRepository: messageRepo,
		publisher:         publisher,
	}
}

// RegisterMessageRoutes registers message-related routes
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.POST("/messages", h.SendMessage)
	g.GET("/messages/:userId", h.GetConversation)
}

// SendMessage stores a message from the caller and then pushes it to the
// connected participants. Push failures never fail the request.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req models.SendMessageRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := validateRequest(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	view, err := h.messageRepository.CreateMessage(ctx, &models.Message{
		SenderID:   claims.UserID,
		ReceiverID: req.ReceiverID,
		Body:       req.Message,
	})
	if err != nil {
		return repositoryError(err, "receiver not found")
	}

	logger := logging.FromContext(ctx)
	delivered, err := h.publisher.Publish(hub.Event{Type: hub.EventNewMessage, Payload: view}, view.SenderID, view.ReceiverID)
	if err != nil {
		logger.Error("push message", slog.Uint64("message_id", uint64(view.ID)), slog.Any("error", err))
	} else {
		logger.Debug("message pushed", slog.Uint64("message_id", uint64(view.ID)), slog.Int("deliveries", delivered))
	}
	return c.JSON(http.StatusCreated, view)
}

// GetConversation returns the caller's conversation with :userId, oldest first
func (h *MessageHandler) GetConversation(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	otherID, err := pathID(c, "userId")
	if err != nil {
		return err
	}

	messages, err := h.messageRepository.GetConversation(c.Request().Context(), claims.UserID, otherID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, messages)
}
