package models

import "time"

// Like is a set-membership fact: at most one row per (user, post).
type Like struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"primaryKey;index"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE;"`
	Post Post `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE;"`
}

// LikeToggleResponse reports the state after a toggle.
type LikeToggleResponse struct {
	Liked   bool   `json:"liked"`
	Message string `json:"message"`
}
