package types

import (
	"time"
)

type User struct {
	Id            int       `json:"id"`
	Username      string    `json:"username"`
	EmailAddress  string    `json:"email_address,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	Password      string    `json:"-"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

type Room struct {
	Id           int       `json:"id"`
	ExternalId   string    `json:"external_id"`
	Name         string    `json:"name"`
	OwnerId      int       `json:"owner_id"`
	IsSelfChat   bool      `json:"is_self_chat"`
	IsPublic     bool      `json:"is_public"`
	Category     string    `json:"category,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	TotalMembers int       `json:"total_members"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

type Invitation struct {
	Id         int       `json:"id"`
	RoomId     int       `json:"room_id"`
	SenderId   int       `json:"sender_id"`
	ReceiverId int       `json:"receiver_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

type Membership struct {
	Id        int       `json:"id"`
	RoomId    int       `json:"room_id"`
	UserId    int       `json:"user_id"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Message is a chat message enriched with the sender's username so
// clients can render it without a second lookup.
type Message struct {
	Id        int       `json:"id"`
	RoomId    int       `json:"room_id"`
	UserId    int       `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Content   string    `json:"content"`
	ImageUrl  string    `json:"image_url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type FriendRequest struct {
	Id         int       `json:"id"`
	SenderId   int       `json:"sender_id"`
	ReceiverId int       `json:"receiver_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

type Notification struct {
	Id         int       `json:"id"`
	UserId     int       `json:"user_id"`
	Type       string    `json:"type"`
	ActorId    int       `json:"actor_id,omitempty"`
	EntityId   int       `json:"entity_id,omitempty"`
	EntityType string    `json:"entity_type,omitempty"`
	Message    string    `json:"message"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}
