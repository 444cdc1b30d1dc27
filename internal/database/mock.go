package database

import (
	"github.com/stretchr/testify/mock"
)

type MockSocialRepository struct {
	mock.Mock
}

func (m *MockSocialRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockSocialRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockSocialRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockSocialRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockSocialRepository) GetAccountByUsername(username string) (User, error) {
	args := m.Called(username)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockSocialRepository) VerifyAccountEmail(token string) (User, error) {
	args := m.Called(token)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockSocialRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	args := m.Called(params)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockSocialRepository) GetRoomByExternalId(externalId string) (Room, error) {
	args := m.Called(externalId)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockSocialRepository) DeleteRoom(id int) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockSocialRepository) ListPublicRooms() ([]Room, error) {
	args := m.Called()
	return args.Get(0).([]Room), args.Error(1)
}
func (m *MockSocialRepository) ListRoomsForAccount(accountId int) ([]Room, error) {
	args := m.Called(accountId)
	return args.Get(0).([]Room), args.Error(1)
}
func (m *MockSocialRepository) CreateInvitation(roomId, senderId, receiverId int) (Invitation, error) {
	args := m.Called(roomId, senderId, receiverId)
	return args.Get(0).(Invitation), args.Error(1)
}
func (m *MockSocialRepository) GetInvitationById(id int) (Invitation, error) {
	args := m.Called(id)
	return args.Get(0).(Invitation), args.Error(1)
}
func (m *MockSocialRepository) GetAcceptedInvitation(roomId, receiverId int) (Invitation, error) {
	args := m.Called(roomId, receiverId)
	return args.Get(0).(Invitation), args.Error(1)
}
func (m *MockSocialRepository) UpdateInvitationStatus(id int, status string) (Invitation, error) {
	args := m.Called(id, status)
	return args.Get(0).(Invitation), args.Error(1)
}
func (m *MockSocialRepository) ListInvitationsForReceiver(accountId int) ([]Invitation, error) {
	args := m.Called(accountId)
	return args.Get(0).([]Invitation), args.Error(1)
}
func (m *MockSocialRepository) ListInvitationsForSender(accountId int) ([]Invitation, error) {
	args := m.Called(accountId)
	return args.Get(0).([]Invitation), args.Error(1)
}
func (m *MockSocialRepository) CreateMembership(roomId, userId int) (Membership, error) {
	args := m.Called(roomId, userId)
	return args.Get(0).(Membership), args.Error(1)
}
func (m *MockSocialRepository) GetMembership(roomId, userId int) (Membership, error) {
	args := m.Called(roomId, userId)
	return args.Get(0).(Membership), args.Error(1)
}
func (m *MockSocialRepository) DeleteMembership(roomId, userId int) error {
	args := m.Called(roomId, userId)
	return args.Error(0)
}
func (m *MockSocialRepository) ListMembers(roomId int) ([]User, error) {
	args := m.Called(roomId)
	return args.Get(0).([]User), args.Error(1)
}
func (m *MockSocialRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	args := m.Called(params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockSocialRepository) GetMessages(roomId, before, limit int) ([]Message, error) {
	args := m.Called(roomId, before, limit)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockSocialRepository) CreateNotification(params CreateNotificationParams) (Notification, error) {
	args := m.Called(params)
	return args.Get(0).(Notification), args.Error(1)
}
func (m *MockSocialRepository) ListNotifications(accountId, limit int) ([]Notification, error) {
	args := m.Called(accountId, limit)
	return args.Get(0).([]Notification), args.Error(1)
}
func (m *MockSocialRepository) UnreadNotificationCount(accountId int) (int, error) {
	args := m.Called(accountId)
	return args.Int(0), args.Error(1)
}
func (m *MockSocialRepository) MarkNotificationRead(id, accountId int) error {
	args := m.Called(id, accountId)
	return args.Error(0)
}
func (m *MockSocialRepository) MarkAllNotificationsRead(accountId int) error {
	args := m.Called(accountId)
	return args.Error(0)
}
func (m *MockSocialRepository) CreateFollow(followerId, followeeId int) (Follow, error) {
	args := m.Called(followerId, followeeId)
	return args.Get(0).(Follow), args.Error(1)
}
func (m *MockSocialRepository) DeleteFollow(followerId, followeeId int) error {
	args := m.Called(followerId, followeeId)
	return args.Error(0)
}
func (m *MockSocialRepository) CreateFriendRequest(senderId, receiverId int) (FriendRequest, error) {
	args := m.Called(senderId, receiverId)
	return args.Get(0).(FriendRequest), args.Error(1)
}
func (m *MockSocialRepository) GetFriendRequestById(id int) (FriendRequest, error) {
	args := m.Called(id)
	return args.Get(0).(FriendRequest), args.Error(1)
}
func (m *MockSocialRepository) UpdateFriendRequestStatus(id int, status string) (FriendRequest, error) {
	args := m.Called(id, status)
	return args.Get(0).(FriendRequest), args.Error(1)
}
func (m *MockSocialRepository) RoomRecipientIds(roomId int) ([]int, error) {
	args := m.Called(roomId)
	return args.Get(0).([]int), args.Error(1)
}
