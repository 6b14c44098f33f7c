package router

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/nano-chat/backend/internal/models"
	"github.com/anonto42/nano-chat/backend/internal/repositories"
)

// memoryStore implements every repository interface in memory with the same
// error semantics as the PostgreSQL repositories.
type memoryStore struct {
	mu          sync.Mutex
	clock       time.Time
	users       map[uint]*models.User
	friendships map[[2]uint]*models.Friendship
	posts       []*models.Post
	likes       map[[2]uint]bool
	comments    []*models.Comment
	messages    []*models.Message
	nextID      uint
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:       map[uint]*models.User{},
		friendships: map[[2]uint]*models.Friendship{},
		likes:       map[[2]uint]bool{},
	}
}

// tick returns a strictly increasing timestamp so ordering is deterministic.
func (s *memoryStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memoryStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return &repositories.DuplicateError{Field: "username"}
		}
		if u.Email == user.Email {
			return &repositories.DuplicateError{Field: "email"}
		}
	}
	user.ID = s.id()
	user.CreatedAt = s.tick()
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *memoryStore) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *memoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *memoryStore) ListOtherUsers(_ context.Context, excludeID uint) ([]models.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.UserSummary{}
	for _, u := range s.users {
		if u.ID == excludeID {
			continue
		}
		out = append(out, models.UserSummary{ID: u.ID, Username: u.Username, Email: u.Email, Avatar: u.Avatar, Status: u.Status})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *memoryStore) UpdateProfile(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	for _, u := range s.users {
		if u.ID != user.ID && u.Username == user.Username {
			return &repositories.DuplicateError{Field: "username"}
		}
	}
	existing.Username = user.Username
	existing.Bio = user.Bio
	existing.Status = user.Status
	existing.Avatar = user.Avatar
	return nil
}

func (s *memoryStore) LinkFirebaseUID(_ context.Context, id uint, firebaseUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.FirebaseUID = &firebaseUID
	return nil
}

func (s *memoryStore) UsernamesByID(_ context.Context, ids []uint) (map[uint]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[uint]string{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u.Username
		}
	}
	return out, nil
}

func (s *memoryStore) CreateRequest(_ context.Context, req *models.Friendship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[req.UserLowID]; !ok {
		return repositories.ErrMissingReference
	}
	if _, ok := s.users[req.UserHighID]; !ok {
		return repositories.ErrMissingReference
	}
	key := [2]uint{req.UserLowID, req.UserHighID}
	if _, ok := s.friendships[key]; ok {
		return &repositories.DuplicateError{Field: "friendship"}
	}
	req.CreatedAt = s.tick()
	req.UpdatedAt = req.CreatedAt
	stored := *req
	s.friendships[key] = &stored
	return nil
}

func (s *memoryStore) AcceptRequest(_ context.Context, targetID, requesterID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	low, high := models.PairKey(targetID, requesterID)
	f, ok := s.friendships[[2]uint{low, high}]
	if !ok || f.RequesterID != requesterID || f.Status != models.FriendshipPending {
		return repositories.ErrNotFound
	}
	f.Status = models.FriendshipAccepted
	f.UpdatedAt = s.tick()
	return nil
}

func (s *memoryStore) RemoveFriendship(_ context.Context, userID, otherID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	low, high := models.PairKey(userID, otherID)
	delete(s.friendships, [2]uint{low, high})
	return nil
}

func (s *memoryStore) ListFriendships(_ context.Context, userID uint) ([]models.FriendEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.FriendEntry{}
	for _, f := range s.friendships {
		if f.UserLowID != userID && f.UserHighID != userID {
			continue
		}
		other := s.users[f.OtherParty(userID)]
		out = append(out, models.FriendEntry{
			ID:        other.ID,
			Username:  other.Username,
			Email:     other.Email,
			Avatar:    other.Avatar,
			Status:    f.Status,
			Direction: f.Direction(userID),
			CreatedAt: f.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryStore) SearchUsers(_ context.Context, callerID uint, query string, limit int) ([]models.UserSearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(query)
	out := []models.UserSearchResult{}
	for _, u := range s.users {
		if u.ID == callerID {
			continue
		}
		if !strings.Contains(strings.ToLower(u.Username), q) && !strings.Contains(strings.ToLower(u.Email), q) {
			continue
		}
		res := models.UserSearchResult{ID: u.ID, Username: u.Username, Email: u.Email, Avatar: u.Avatar}
		low, high := models.PairKey(callerID, u.ID)
		if f, ok := s.friendships[[2]uint{low, high}]; ok {
			status := f.Status
			direction := f.Direction(callerID)
			res.FriendStatus = &status
			res.RequestDirection = &direction
		}
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryStore) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[post.UserID]; !ok {
		return repositories.ErrMissingReference
	}
	post.ID = s.id()
	post.CreatedAt = s.tick()
	stored := *post
	s.posts = append(s.posts, &stored)
	return nil
}

func (s *memoryStore) ListPosts(_ context.Context, viewerID uint, limit, offset int) ([]models.PostView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.PostView{}
	for i := len(s.posts) - 1; i >= 0; i-- {
		p := s.posts[i]
		author := s.users[p.UserID]
		view := models.PostView{
			ID:        p.ID,
			UserID:    p.UserID,
			Content:   p.Content,
			Image:     p.Image,
			CreatedAt: p.CreatedAt,
			Username:  author.Username,
			Avatar:    author.Avatar,
			IsLiked:   s.likes[[2]uint{viewerID, p.ID}],
		}
		for key := range s.likes {
			if key[1] == p.ID {
				view.LikesCount++
			}
		}
		for _, c := range s.comments {
			if c.PostID == p.ID {
				view.CommentsCount++
			}
		}
		out = append(out, view)
	}
	if offset > 0 {
		if offset >= len(out) {
			return []models.PostView{}, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryStore) PostExists(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.postLocked(id) != nil, nil
}

func (s *memoryStore) postLocked(id uint) *models.Post {
	for _, p := range s.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *memoryStore) ToggleLike(_ context.Context, userID, postID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.postLocked(postID) == nil {
		return false, repositories.ErrMissingReference
	}
	key := [2]uint{userID, postID}
	if s.likes[key] {
		delete(s.likes, key)
		return false, nil
	}
	s.likes[key] = true
	return true, nil
}

func (s *memoryStore) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.postLocked(comment.PostID) == nil {
		return repositories.ErrMissingReference
	}
	comment.ID = s.id()
	comment.CreatedAt = s.tick()
	stored := *comment
	s.comments = append(s.comments, &stored)
	return nil
}

func (s *memoryStore) ListComments(_ context.Context, postID uint) ([]models.CommentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.CommentView{}
	for _, c := range s.comments {
		if c.PostID != postID {
			continue
		}
		author := s.users[c.UserID]
		out = append(out, models.CommentView{
			ID:        c.ID,
			UserID:    c.UserID,
			PostID:    c.PostID,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
			Username:  author.Username,
			Avatar:    author.Avatar,
		})
	}
	return out, nil
}

func (s *memoryStore) CreateMessage(_ context.Context, msg *models.Message) (*models.MessageView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sender, ok := s.users[msg.SenderID]
	if !ok {
		return nil, repositories.ErrMissingReference
	}
	if _, ok := s.users[msg.ReceiverID]; !ok {
		return nil, repositories.ErrMissingReference
	}
	msg.ID = s.id()
	msg.CreatedAt = s.tick()
	stored := *msg
	s.messages = append(s.messages, &stored)
	return &models.MessageView{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Body:       msg.Body,
		SenderName: sender.Username,
		CreatedAt:  msg.CreatedAt,
	}, nil
}

func (s *memoryStore) GetConversation(_ context.Context, userID, otherID uint) ([]models.MessageView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.MessageView{}
	for _, m := range s.messages {
		between := (m.SenderID == userID && m.ReceiverID == otherID) ||
			(m.SenderID == otherID && m.ReceiverID == userID)
		if !between {
			continue
		}
		out = append(out, models.MessageView{
			ID:         m.ID,
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			Body:       m.Body,
			SenderName: s.users[m.SenderID].Username,
			CreatedAt:  m.CreatedAt,
		})
	}
	return out, nil
}
