package repositories

import (
	"context"

	"github.com/anonto42/nano-chat/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	ListPosts(ctx context.Context, viewerID uint, limit, offset int) ([]models.PostView, error)
	PostExists(ctx context.Context, id uint) (bool, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost creates a new post in PostgreSQL
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return translateError(r.db.WithContext(ctx).Create(post).Error)
}

// ListPosts returns posts newest first with author fields, like and comment
// counts, and whether viewerID has liked each one. A limit <= 0 means no limit.
func (r *PostgresPostRepository) ListPosts(ctx context.Context, viewerID uint, limit, offset int) ([]models.PostView, error) {
	posts := []models.PostView{}
	q := r.db.WithContext(ctx).
		Table("posts p").
		Select(`p.id, p.user_id, p.content, p.image, p.created_at,
			u.username, u.avatar,
			(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS likes_count,
			(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comments_count,
			EXISTS (SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = ?) AS is_liked`, viewerID).
		Joins("JOIN users u ON u.id = p.user_id").
		Order("p.created_at DESC, p.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Scan(&posts).Error; err != nil {
		return nil, translateError(err)
	}
	return posts, nil
}

// PostExists reports whether a post with the given id exists
func (r *PostgresPostRepository) PostExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}
