package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// DefaultStatus is the presence text given to accounts that never set one.
const DefaultStatus = "online"

type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"size:50;not null;uniqueIndex:idx_users_username"`
	Email       string    `json:"email" gorm:"size:100;not null;uniqueIndex:idx_users_email"`
	Password    string    `json:"-" gorm:"size:255;not null"` // bcrypt hash, never serialized
	Avatar      *string   `json:"avatar" gorm:"type:text"`
	Bio         *string   `json:"bio" gorm:"type:text"`
	Status      string    `json:"status" gorm:"size:100;not null;default:online"`
	FirebaseUID *string   `json:"-" gorm:"size:128;uniqueIndex:idx_users_firebase_uid"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
}

// PublicProfile is the projection of a user that is safe to return to clients.
type PublicProfile struct {
	ID       uint    `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Avatar   *string `json:"avatar"`
	Bio      *string `json:"bio"`
	Status   string  `json:"status"`
}

// Profile returns the public projection of u.
func (u *User) Profile() PublicProfile {
	return PublicProfile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
		Bio:      u.Bio,
		Status:   u.Status,
	}
}

// UserSummary is a row of the "other users" directory.
type UserSummary struct {
	ID       uint    `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Avatar   *string `json:"avatar"`
	Status   string  `json:"status"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,notblank,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type UpdateProfileRequest struct {
	Username string  `json:"username" validate:"required,notblank,min=3,max=50"`
	Bio      *string `json:"bio"`
	Status   string  `json:"status" validate:"max=100"`
	Avatar   *string `json:"avatar"`
}

// LoginResponse is returned by every successful login flow.
type LoginResponse struct {
	Token string        `json:"token"`
	User  PublicProfile `json:"user"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
