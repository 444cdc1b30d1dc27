package database

type SocialRepository interface {
	Ping() error

	CreateAccount(params CreateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)
	GetAccountByUsername(username string) (User, error)
	VerifyAccountEmail(token string) (User, error)

	CreateRoom(params CreateRoomParams) (Room, error)
	GetRoomByExternalId(externalId string) (Room, error)
	DeleteRoom(id int) error
	ListPublicRooms() ([]Room, error)
	ListRoomsForAccount(accountId int) ([]Room, error)

	CreateInvitation(roomId, senderId, receiverId int) (Invitation, error)
	GetInvitationById(id int) (Invitation, error)
	GetAcceptedInvitation(roomId, receiverId int) (Invitation, error)
	UpdateInvitationStatus(id int, status string) (Invitation, error)
	ListInvitationsForReceiver(accountId int) ([]Invitation, error)
	ListInvitationsForSender(accountId int) ([]Invitation, error)

	CreateMembership(roomId, userId int) (Membership, error)
	GetMembership(roomId, userId int) (Membership, error)
	DeleteMembership(roomId, userId int) error
	ListMembers(roomId int) ([]User, error)

	CreateMessage(params CreateMessageParams) (Message, error)
	GetMessages(roomId, before, limit int) ([]Message, error)

	CreateNotification(params CreateNotificationParams) (Notification, error)
	ListNotifications(accountId, limit int) ([]Notification, error)
	UnreadNotificationCount(accountId int) (int, error)
	MarkNotificationRead(id, accountId int) error
	MarkAllNotificationsRead(accountId int) error

	CreateFollow(followerId, followeeId int) (Follow, error)
	DeleteFollow(followerId, followeeId int) error
	CreateFriendRequest(senderId, receiverId int) (FriendRequest, error)
	GetFriendRequestById(id int) (FriendRequest, error)
	UpdateFriendRequestStatus(id int, status string) (FriendRequest, error)

	// RoomRecipientIds returns the user ids with standing access to the
	// room: the owner plus members (public) or accepted invitees
	// (private). Used to fan out chat notifications.
	RoomRecipientIds(roomId int) ([]int, error)
}
