package models

import "time"

// Message is a direct message. Rows are append-only.
type Message struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SenderID   uint      `json:"sender_id" gorm:"not null;index:idx_messages_pair,priority:1"`
	ReceiverID uint      `json:"receiver_id" gorm:"not null;index:idx_messages_pair,priority:2;index"`
	Body       string    `json:"message" gorm:"column:message;type:text;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`

	Sender   User `json:"-" gorm:"foreignKey:SenderID;references:ID"`
	Receiver User `json:"-" gorm:"foreignKey:ReceiverID;references:ID"`
}

// MessageView is a message annotated with the sender's username. It is both
// the conversation row and the payload pushed to subscribers.
type MessageView struct {
	ID         uint      `json:"id"`
	SenderID   uint      `json:"sender_id"`
	ReceiverID uint      `json:"receiver_id"`
	Body       string    `json:"message" gorm:"column:message"`
	SenderName string    `json:"sender_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// SendMessageRequest defines the request body for sending a direct message
type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" validate:"required"`
	Message    string `json:"message" validate:"required,notblank,max=10000"`
}
