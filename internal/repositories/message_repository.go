package repositories

import (
	"context"

	"github.com/anonto42/nano-chat/backend/internal/models"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for direct message storage
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) (*models.MessageView, error)
	GetConversation(ctx context.Context, userID, otherID uint) ([]models.MessageView, error)
}

// PostgresMessageRepository implements MessageRepository for PostgreSQL
type PostgresMessageRepository struct {
	db *gorm.DB
}

// NewPostgresMessageRepository creates a new PostgresMessageRepository
func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

// CreateMessage stores msg and returns it annotated with the sender's current
// username. An unknown sender or receiver surfaces as ErrMissingReference.
func (r *PostgresMessageRepository) CreateMessage(ctx context.Context, msg *models.Message) (*models.MessageView, error) {
	db := r.db.WithContext(ctx)
	if err := db.Create(msg).Error; err != nil {
		return nil, translateError(err)
	}
	var sender models.User
	if err := db.Select("id", "username").First(&sender, msg.SenderID).Error; err != nil {
		return nil, translateError(err)
	}
	return &models.MessageView{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Body:       msg.Body,
		SenderName: sender.Username,
		CreatedAt:  msg.CreatedAt,
	}, nil
}

// GetConversation returns every message exchanged between the two users in
// either direction, oldest first.
func (r *PostgresMessageRepository) GetConversation(ctx context.Context, userID, otherID uint) ([]models.MessageView, error) {
	messages := []models.MessageView{}
	err := r.db.WithContext(ctx).
		Table("messages m").
		Select("m.id, m.sender_id, m.receiver_id, m.message, m.created_at, u.username AS sender_name").
		Joins("JOIN users u ON u.id = m.sender_id").
		Where("(m.sender_id = ? AND m.receiver_id = ?) OR (m.sender_id = ? AND m.receiver_id = ?)",
			userID, otherID, otherID, userID).
		Order("m.created_at ASC, m.id ASC").
		Scan(&messages).Error
	if err != nil {
		return nil, translateError(err)
	}
	return messages, nil
}
