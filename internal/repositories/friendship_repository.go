package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/nano-chat/backend/internal/models"
	"gorm.io/gorm"
)

// FriendshipRepository defines the interface for friendship data operations
type FriendshipRepository interface {
	CreateRequest(ctx context.Context, req *models.Friendship) error
	AcceptRequest(ctx context.Context, targetID, requesterID uint) error
	RemoveFriendship(ctx context.Context, userID, otherID uint) error
	ListFriendships(ctx context.Context, userID uint) ([]models.FriendEntry, error)
	SearchUsers(ctx context.Context, callerID uint, query string, limit int) ([]models.UserSearchResult, error)
}

// PostgresFriendshipRepository implements FriendshipRepository for PostgreSQL
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

// NewPostgresFriendshipRepository creates a new PostgresFriendshipRepository
func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

// CreateRequest inserts a pending edge. The pair primary key makes a second
// request in either direction fail with a DuplicateError.
func (r *PostgresFriendshipRepository) CreateRequest(ctx context.Context, req *models.Friendship) error {
	err := translateError(r.db.WithContext(ctx).Create(req).Error)
	if IsDuplicate(err, "") {
		return &DuplicateError{Field: "friendship"}
	}
	return err
}

// AcceptRequest flips a pending edge sent by requesterID to targetID.
// It is a single conditional UPDATE; ErrNotFound when no such pending edge exists.
func (r *PostgresFriendshipRepository) AcceptRequest(ctx context.Context, targetID, requesterID uint) error {
	low, high := models.PairKey(targetID, requesterID)
	res := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("user_low_id = ? AND user_high_id = ? AND requester_id = ? AND status = ?",
			low, high, requesterID, models.FriendshipPending).
		Update("status", models.FriendshipAccepted)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveFriendship deletes the edge between the two users, whatever its state.
// Removing a missing edge is not an error.
func (r *PostgresFriendshipRepository) RemoveFriendship(ctx context.Context, userID, otherID uint) error {
	low, high := models.PairKey(userID, otherID)
	return translateError(r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		Delete(&models.Friendship{}).Error)
}

// ListFriendships returns every edge touching userID, newest first, joined
// with the other party's public fields.
func (r *PostgresFriendshipRepository) ListFriendships(ctx context.Context, userID uint) ([]models.FriendEntry, error) {
	entries := []models.FriendEntry{}
	err := r.db.WithContext(ctx).Raw(`
		SELECT u.id, u.username, u.email, u.avatar, f.status,
		       CASE WHEN f.requester_id = ? THEN 'sent' ELSE 'received' END AS direction,
		       f.created_at
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.user_low_id = ? THEN f.user_high_id ELSE f.user_low_id END
		WHERE f.user_low_id = ? OR f.user_high_id = ?
		ORDER BY f.created_at DESC`,
		userID, userID, userID, userID).Scan(&entries).Error
	if err != nil {
		return nil, translateError(err)
	}
	return entries, nil
}

// SearchUsers does a case-insensitive substring match on username or email,
// excluding the caller and annotating each hit with the relationship state.
func (r *PostgresFriendshipRepository) SearchUsers(ctx context.Context, callerID uint, query string, limit int) ([]models.UserSearchResult, error) {
	pattern := "%" + EscapeLike(strings.ToLower(query)) + "%"
	results := []models.UserSearchResult{}
	err := r.db.WithContext(ctx).Raw(`
		SELECT u.id, u.username, u.email, u.avatar,
		       f.status AS friend_status,
		       CASE
		         WHEN f.requester_id IS NULL THEN NULL
		         WHEN f.requester_id = ? THEN 'sent'
		         ELSE 'received'
		       END AS request_direction
		FROM users u
		LEFT JOIN friendships f
		       ON f.user_low_id = LEAST(u.id, ?) AND f.user_high_id = GREATEST(u.id, ?)
		WHERE (LOWER(u.username) LIKE ? ESCAPE '\' OR LOWER(u.email) LIKE ? ESCAPE '\')
		  AND u.id <> ?
		ORDER BY u.username ASC
		LIMIT ?`,
		callerID, callerID, callerID, pattern, pattern, callerID, limit).Scan(&results).Error
	if err != nil {
		return nil, translateError(err)
	}
	return results, nil
}

// EscapeLike escapes LIKE metacharacters so user input matches literally.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
