package models

import "time"

// Post represents a feed entry authored by a user
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Image     *string   `json:"image" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE;"`
}

// PostView is a post annotated with its author and per-request aggregates.
type PostView struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	Content       string    `json:"content"`
	Image         *string   `json:"image"`
	CreatedAt     time.Time `json:"created_at"`
	Username      string    `json:"username"`
	Avatar        *string   `json:"avatar"`
	LikesCount    int64     `json:"likes_count"`
	CommentsCount int64     `json:"comments_count"`
	IsLiked       bool      `json:"is_liked"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content string  `json:"content" validate:"required,notblank,max=5000"`
	Image   *string `json:"image"`
}
