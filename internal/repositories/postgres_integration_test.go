//go:build integration
// +build integration

package repositories

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/nano-chat/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB starts a PostgreSQL container and returns a migrated gorm handle
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start PostgreSQL container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(connStr), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, db))
	return db
}

func createUser(t *testing.T, repo *PostgresUserRepository, name string) *models.User {
	t.Helper()
	user := &models.User{
		Username: name,
		Email:    name + "@example.com",
		Password: "hash",
		Status:   models.DefaultStatus,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func TestUserRepositoryIntegration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewPostgresUserRepository(db)

	alice := createUser(t, users, "alice")
	createUser(t, users, "bob")

	dup := &models.User{Username: "alice", Email: "other@example.com", Password: "x"}
	assert.True(t, IsDuplicate(users.CreateUser(ctx, dup), "username"))
	dup = &models.User{Username: "alice2", Email: "alice@example.com", Password: "x"}
	assert.True(t, IsDuplicate(users.CreateUser(ctx, dup), "email"))

	found, err := users.GetUserByEmail(ctx, "  ALICE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	_, err = users.GetUserByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	others, err := users.ListOtherUsers(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "bob", others[0].Username)
}

func TestFriendshipRepositoryIntegration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewPostgresUserRepository(db)
	friends := NewPostgresFriendshipRepository(db)

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	carol := createUser(t, users, "carol_x")

	require.NoError(t, friends.CreateRequest(ctx, models.NewFriendRequest(alice.ID, bob.ID)))

	// reversed request hits the same pair key
	err := friends.CreateRequest(ctx, models.NewFriendRequest(bob.ID, alice.ID))
	assert.True(t, IsDuplicate(err, "friendship"))

	err = friends.CreateRequest(ctx, models.NewFriendRequest(alice.ID, 9999))
	assert.ErrorIs(t, err, ErrMissingReference)

	// only the target may accept
	assert.ErrorIs(t, friends.AcceptRequest(ctx, alice.ID, bob.ID), ErrNotFound)
	require.NoError(t, friends.AcceptRequest(ctx, bob.ID, alice.ID))
	assert.ErrorIs(t, friends.AcceptRequest(ctx, bob.ID, alice.ID), ErrNotFound)

	require.NoError(t, friends.CreateRequest(ctx, models.NewFriendRequest(carol.ID, alice.ID)))

	entries, err := friends.ListFriendships(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	byName := map[string]models.FriendEntry{}
	for _, e := range entries {
		byName[e.Username] = e
	}
	assert.Equal(t, models.FriendshipAccepted, byName["bob"].Status)
	assert.Equal(t, models.DirectionSent, byName["bob"].Direction)
	assert.Equal(t, models.FriendshipPending, byName["carol_x"].Status)
	assert.Equal(t, models.DirectionReceived, byName["carol_x"].Direction)

	results, err := friends.SearchUsers(ctx, alice.ID, "O", 20)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "bob", results[0].Username)
	require.NotNil(t, results[0].FriendStatus)
	assert.Equal(t, models.FriendshipAccepted, *results[0].FriendStatus)

	// underscore matches literally, not as a wildcard
	results, err = friends.SearchUsers(ctx, alice.ID, "r_l", 20)
	require.NoError(t, err)
	assert.Empty(t, results)
	results, err = friends.SearchUsers(ctx, alice.ID, "ol_x", 20)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].RequestDirection)
	assert.Equal(t, models.DirectionReceived, *results[0].RequestDirection)

	require.NoError(t, friends.RemoveFriendship(ctx, bob.ID, alice.ID))
	require.NoError(t, friends.RemoveFriendship(ctx, bob.ID, alice.ID))
	entries, err = friends.ListFriendships(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPostLikeCommentIntegration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewPostgresUserRepository(db)
	posts := NewPostgresPostRepository(db)
	likes := NewPostgresLikeRepository(db)
	comments := NewPostgresCommentRepository(db)

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	first := &models.Post{UserID: alice.ID, Content: "first"}
	require.NoError(t, posts.CreatePost(ctx, first))
	second := &models.Post{UserID: bob.ID, Content: "second"}
	require.NoError(t, posts.CreatePost(ctx, second))

	liked, err := likes.ToggleLike(ctx, bob.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	_, err = likes.ToggleLike(ctx, bob.ID, 9999)
	assert.ErrorIs(t, err, ErrMissingReference)

	require.NoError(t, comments.CreateComment(ctx, &models.Comment{UserID: bob.ID, PostID: first.ID, Body: "one"}))
	require.NoError(t, comments.CreateComment(ctx, &models.Comment{UserID: alice.ID, PostID: first.ID, Body: "two"}))
	err = comments.CreateComment(ctx, &models.Comment{UserID: alice.ID, PostID: 9999, Body: "x"})
	assert.ErrorIs(t, err, ErrMissingReference)

	feed, err := posts.ListPosts(ctx, bob.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, second.ID, feed[0].ID)
	assert.Equal(t, first.ID, feed[1].ID)
	assert.Equal(t, "alice", feed[1].Username)
	assert.EqualValues(t, 1, feed[1].LikesCount)
	assert.EqualValues(t, 2, feed[1].CommentsCount)
	assert.True(t, feed[1].IsLiked)

	page, err := posts.ListPosts(ctx, bob.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)

	list, err := comments.ListComments(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].Body)
	assert.Equal(t, "bob", list[0].Username)

	liked, err = likes.ToggleLike(ctx, bob.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	exists, err := posts.PostExists(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestConcurrentToggleLeavesConsistentState(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewPostgresUserRepository(db)
	posts := NewPostgresPostRepository(db)
	likes := NewPostgresLikeRepository(db)

	alice := createUser(t, users, "alice")
	post := &models.Post{UserID: alice.ID, Content: "hi"}
	require.NoError(t, posts.CreatePost(ctx, post))

	const togglers = 8
	errs := make([]error, togglers)
	var wg sync.WaitGroup
	for i := 0; i < togglers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = likes.ToggleLike(ctx, alice.ID, post.ID)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "toggle %d", i)
	}

	var count int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.LessOrEqual(t, count, int64(1))
}

func TestMessageRepositoryIntegration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewPostgresUserRepository(db)
	messages := NewPostgresMessageRepository(db)

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	carol := createUser(t, users, "carol")

	for i := 0; i < 3; i++ {
		from, to := alice.ID, bob.ID
		if i%2 == 1 {
			from, to = bob.ID, alice.ID
		}
		view, err := messages.CreateMessage(ctx, &models.Message{SenderID: from, ReceiverID: to, Body: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
		assert.NotZero(t, view.ID)
	}
	_, err := messages.CreateMessage(ctx, &models.Message{SenderID: carol.ID, ReceiverID: alice.ID, Body: "unrelated"})
	require.NoError(t, err)

	_, err = messages.CreateMessage(ctx, &models.Message{SenderID: alice.ID, ReceiverID: 9999, Body: "x"})
	assert.ErrorIs(t, err, ErrMissingReference)

	conv, err := messages.GetConversation(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, conv, 3)
	assert.Equal(t, "m0", conv[0].Body)
	assert.Equal(t, "alice", conv[0].SenderName)
	assert.Equal(t, "bob", conv[1].SenderName)
	assert.Equal(t, "m2", conv[2].Body)
}
