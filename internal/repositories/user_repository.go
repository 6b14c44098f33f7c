package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/nano-chat/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListOtherUsers(ctx context.Context, excludeID uint) ([]models.UserSummary, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	LinkFirebaseUID(ctx context.Context, id uint, firebaseUID string) error
	UsernamesByID(ctx context.Context, ids []uint) (map[uint]string, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates a new user in PostgreSQL
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by (normalized) email
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// ListOtherUsers returns every user except excludeID, ordered by username
func (r *PostgresUserRepository) ListOtherUsers(ctx context.Context, excludeID uint) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "username", "email", "avatar", "status").
		Where("id <> ?", excludeID).
		Order("username ASC").
		Scan(&users).Error
	if err != nil {
		return nil, translateError(err)
	}
	return users, nil
}

// UpdateProfile writes the mutable profile columns of user
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"username": user.Username,
			"bio":      user.Bio,
			"status":   user.Status,
			"avatar":   user.Avatar,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LinkFirebaseUID records the Firebase identity of an existing account
func (r *PostgresUserRepository) LinkFirebaseUID(ctx context.Context, id uint, firebaseUID string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("firebase_uid", firebaseUID)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UsernamesByID resolves display names for a set of user ids
func (r *PostgresUserRepository) UsernamesByID(ctx context.Context, ids []uint) (map[uint]string, error) {
	out := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		ID       uint
		Username string
	}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "username").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	for _, row := range rows {
		out[row.ID] = row.Username
	}
	return out, nil
}
