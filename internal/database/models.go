package database

import "time"

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestDeclined = "declined"
)

type User struct {
	Id            int
	Username      string
	EmailAddress  string
	EmailVerified bool
	PasswordHash  string
	VerifyToken   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Room struct {
	Id           int
	ExternalId   string
	Name         string
	OwnerId      int
	IsSelfChat   bool
	IsPublic     bool
	Category     string
	Tags         []string
	TotalMembers int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Invitation struct {
	Id         int
	RoomId     int
	SenderId   int
	ReceiverId int
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Membership struct {
	Id        int
	RoomId    int
	UserId    int
	IsAdmin   bool
	CreatedAt time.Time
}

type Message struct {
	Id        int
	RoomId    int
	UserId    int
	Username  string
	Content   string
	ImageUrl  string
	CreatedAt time.Time
}

type Notification struct {
	Id         int
	UserId     int
	Type       string
	ActorId    int
	EntityId   int
	EntityType string
	Message    string
	IsRead     bool
	CreatedAt  time.Time
}

type Follow struct {
	Id         int
	FollowerId int
	FolloweeId int
	CreatedAt  time.Time
}

type FriendRequest struct {
	Id         int
	SenderId   int
	ReceiverId int
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CreateAccountParams struct {
	Username     string
	EmailAddress string
	PasswordHash string
	VerifyToken  string
}

type CreateRoomParams struct {
	Name       string
	ExternalId string
	OwnerId    int
	IsSelfChat bool
	IsPublic   bool
	Category   string
	Tags       []string
}

type CreateMessageParams struct {
	RoomId   int
	UserId   int
	Content  string
	ImageUrl string
}

type CreateNotificationParams struct {
	UserId     int
	Type       string
	ActorId    int
	EntityId   int
	EntityType string
	Message    string
}
