package models

import "time"

// FriendshipStatus defines the state of a relationship between two users.
type FriendshipStatus string

const (
	// FriendshipPending means a request has been sent but not yet accepted.
	FriendshipPending FriendshipStatus = "pending"
	// FriendshipAccepted means the target accepted the request.
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Request directions as seen by the caller.
const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

// Friendship is one row per unordered pair of users. The pair is stored with
// the lower id first so A->B and B->A map to the same primary key; the
// requester is kept separately.
type Friendship struct {
	UserLowID   uint             `json:"user_low_id" gorm:"primaryKey"`
	UserHighID  uint             `json:"user_high_id" gorm:"primaryKey;index;check:chk_friendships_pair_order,user_low_id < user_high_id"`
	RequesterID uint             `json:"requester_id" gorm:"not null"`
	Status      FriendshipStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time        `json:"updated_at"`

	UserLow  User `json:"-" gorm:"foreignKey:UserLowID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	UserHigh User `json:"-" gorm:"foreignKey:UserHighID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// PairKey orders two user ids into the (low, high) key of their friendship row.
func PairKey(a, b uint) (low, high uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// NewFriendRequest builds a pending edge from requester to target.
func NewFriendRequest(requesterID, targetID uint) *Friendship {
	low, high := PairKey(requesterID, targetID)
	return &Friendship{
		UserLowID:   low,
		UserHighID:  high,
		RequesterID: requesterID,
		Status:      FriendshipPending,
	}
}

// OtherParty returns the id of the user on the other side of the edge.
func (f *Friendship) OtherParty(userID uint) uint {
	if f.UserLowID == userID {
		return f.UserHighID
	}
	return f.UserLowID
}

// Direction reports whether userID sent or received the request.
func (f *Friendship) Direction(userID uint) string {
	if f.RequesterID == userID {
		return DirectionSent
	}
	return DirectionReceived
}

// FriendEntry is an edge joined with the other party's public fields.
type FriendEntry struct {
	ID        uint             `json:"id"`
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	Avatar    *string          `json:"avatar"`
	Status    FriendshipStatus `json:"status"`
	Direction string           `json:"direction"`
	CreatedAt time.Time        `json:"created_at"`
}

// UserSearchResult is a user annotated with the caller's relationship to them.
type UserSearchResult struct {
	ID               uint              `json:"id"`
	Username         string            `json:"username"`
	Email            string            `json:"email"`
	Avatar           *string           `json:"avatar"`
	FriendStatus     *FriendshipStatus `json:"friend_status"`
	RequestDirection *string           `json:"request_direction"`
}
