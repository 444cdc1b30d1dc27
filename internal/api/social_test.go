package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/acrispino/socialchat/internal/database"
	"github.com/acrispino/socialchat/internal/notification"
	"github.com/acrispino/socialchat/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var receiverAccount = database.User{
	Id:            5,
	Username:      "receiver",
	EmailAddress:  "receiver@example.com",
	EmailVerified: true,
}

func ownedPrivateRoom(ownerId int) database.Room {
	return database.Room{
		Id:         20,
		ExternalId: "privext",
		Name:       "Private",
		OwnerId:    ownerId,
	}
}

func TestSendInvitationHandler(t *testing.T) {
	t.Run("owner invites a user to a private room", func(t *testing.T) {
		room := ownedPrivateRoom(testAccount.Id)
		inv := database.Invitation{
			Id:         1,
			RoomId:     room.Id,
			SenderId:   testAccount.Id,
			ReceiverId: receiverAccount.Id,
			Status:     database.InvitationPending,
		}

		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", testAccount.Id).Return(testAccount, nil).Once()
		mockRepo.On("GetRoomByExternalId", room.ExternalId).Return(room, nil).Once()
		mockRepo.On("GetAccountByUsername", receiverAccount.Username).Return(receiverAccount, nil).Once()
		mockRepo.On("CreateInvitation", room.Id, testAccount.Id, receiverAccount.Id).Return(inv, nil).Once()
		mockRepo.On("CreateNotification", mock.MatchedBy(func(params database.CreateNotificationParams) bool {
			return params.UserId == receiverAccount.Id &&
				params.Type == notification.TypeRoomInvite &&
				params.ActorId == testAccount.Id &&
				params.EntityId == inv.Id
		})).Return(database.Notification{}, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.sendInvitation(rr, authedRequest(t, http.MethodPost, "/api/invitations", SendInvitationRequest{
			RoomId:   room.ExternalId,
			Username: receiverAccount.Username,
		}, testAccount.Id))

		assert.Equal(t, http.StatusCreated, rr.Code)

		var got types.Invitation
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, inv.Id, got.Id)
		assert.Equal(t, database.InvitationPending, got.Status)
	})

	t.Run("non-owner cannot invite", func(t *testing.T) {
		room := ownedPrivateRoom(99)

		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", testAccount.Id).Return(testAccount, nil).Once()
		mockRepo.On("GetRoomByExternalId", room.ExternalId).Return(room, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.sendInvitation(rr, authedRequest(t, http.MethodPost, "/api/invitations", SendInvitationRequest{
			RoomId:   room.ExternalId,
			Username: receiverAccount.Username,
		}, testAccount.Id))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("cannot invite to a public room", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		owner := database.User{Id: testPublicRoom.OwnerId, Username: "owner", EmailVerified: true}
		mockRepo.On("GetAccountById", owner.Id).Return(owner, nil).Once()
		mockRepo.On("GetRoomByExternalId", testPublicRoom.ExternalId).Return(testPublicRoom, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.sendInvitation(rr, authedRequest(t, http.MethodPost, "/api/invitations", SendInvitationRequest{
			RoomId:   testPublicRoom.ExternalId,
			Username: receiverAccount.Username,
		}, owner.Id))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("cannot invite yourself", func(t *testing.T) {
		room := ownedPrivateRoom(testAccount.Id)

		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", testAccount.Id).Return(testAccount, nil).Once()
		mockRepo.On("GetRoomByExternalId", room.ExternalId).Return(room, nil).Once()
		mockRepo.On("GetAccountByUsername", testAccount.Username).Return(testAccount, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.sendInvitation(rr, authedRequest(t, http.MethodPost, "/api/invitations", SendInvitationRequest{
			RoomId:   room.ExternalId,
			Username: testAccount.Username,
		}, testAccount.Id))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRespondInvitationHandler(t *testing.T) {
	pending := database.Invitation{
		Id:         1,
		RoomId:     20,
		SenderId:   3,
		ReceiverId: testAccount.Id,
		Status:     database.InvitationPending,
	}

	t.Run("receiver accepts", func(t *testing.T) {
		accepted := pending
		accepted.Status = database.InvitationAccepted

		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", testAccount.Id).Return(testAccount, nil).Once()
		mockRepo.On("GetInvitationById", pending.Id).Return(pending, nil).Once()
		mockRepo.On("UpdateInvitationStatus", pending.Id, database.InvitationAccepted).Return(accepted, nil).Once()
		mockRepo.On("CreateNotification", mock.MatchedBy(func(params database.CreateNotificationParams) bool {
			return params.UserId == pending.SenderId && params.Type == notification.TypeInviteResponse
		})).Return(database.Notification{}, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.respondInvitation(rr, authedRequest(t, http.MethodPost, "/api/invitations/respond", RespondRequest{
			Id:     pending.Id,
			Action: "accept",
		}, testAccount.Id))

		assert.Equal(t, http.StatusOK, rr.Code)

		var got types.Invitation
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, database.InvitationAccepted, got.Status)
	})

	t.Run("receiver declines and the sender is told so", func(t *testing.T) {
		declined := pending
		declined.Status = database.InvitationDeclined

		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", testAccount.Id).Return(testAccount, nil).Once()
		mockRepo.On("GetInvitationById", pending.Id).Return(pending, nil).Once()
		mockRepo.On("UpdateInvitationStatus", pending.Id, database.InvitationDeclined).Return(declined, nil).Once()
		mockRepo.On("CreateNotification", mock.MatchedBy(func(params database.CreateNotificationParams) bool {
			return params.UserId == pending.SenderId &&
				params.Message == "testuser declined your invitation"
		})).Return(database.Notification{}, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.respondInvitation(rr, authedRequest(t, http.MethodPost, "/api/invitations/respond", RespondRequest{
			Id:     pending.Id,
			Action: "decline",
		}, testAccount.Id))

		assert.Equal(t, http.StatusOK, rr.Code)

		var got types.Invitation
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, database.InvitationDeclined, got.Status)
	})

	t.Run("only the receiver may respond", func(t *testing.T) {
		other := database.User{Id: 9, Username: "other", EmailVerified: true}

		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", other.Id).Return(other, nil).Once()
		mockRepo.On("GetInvitationById", pending.Id).Return(pending, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.respondInvitation(rr, authedRequest(t, http.MethodPost, "/api/invitations/respond", RespondRequest{
			Id:     pending.Id,
			Action: "decline",
		}, other.Id))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("responding again to a settled invitation fails", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", testAccount.Id).Return(testAccount, nil).Once()
		mockRepo.On("GetInvitationById", pending.Id).Return(pending, nil).Once()
		mockRepo.On("UpdateInvitationStatus", pending.Id, database.InvitationDeclined).Return(database.Invitation{}, sql.ErrNoRows).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.respondInvitation(rr, authedRequest(t, http.MethodPost, "/api/invitations/respond", RespondRequest{
			Id:     pending.Id,
			Action: "decline",
		}, testAccount.Id))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("unknown action", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", testAccount.Id).Return(testAccount, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.respondInvitation(rr, authedRequest(t, http.MethodPost, "/api/invitations/respond", RespondRequest{
			Id:     pending.Id,
			Action: "maybe",
		}, testAccount.Id))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestJoinRoomHandler(t *testing.T) {
	t.Run("joins a public room and notifies the owner", func(t *testing.T) {
		membership := database.Membership{Id: 1, RoomId: testPublicRoom.Id, UserId: testAccount.Id}

		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", testAccount.Id).Return(testAccount, nil).Once()
		mockRepo.On("GetRoomByExternalId", testPublicRoom.ExternalId).Return(testPublicRoom, nil).Once()
		mockRepo.On("CreateMembership", testPublicRoom.Id, testAccount.Id).Return(membership, nil).Once()
		mockRepo.On("CreateNotification", mock.MatchedBy(func(params database.CreateNotificationParams) bool {
			return params.UserId == testPublicRoom.OwnerId && params.Type == notification.TypeRoomJoin
		})).Return(database.Notification{}, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.joinRoom(rr, authedRequest(t, http.MethodPost, "/api/memberships/join", RoomActionRequest{
			RoomId: testPublicRoom.ExternalId,
		}, testAccount.Id))

		assert.Equal(t, http.StatusCreated, rr.Code)

		var got types.Membership
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, membership.Id, got.Id)
		assert.False(t, got.IsAdmin, "expected a regular membership")
	})

	t.Run("cannot join a private room", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", testAccount.Id).Return(testAccount, nil).Once()
		mockRepo.On("GetRoomByExternalId", testPrivateRoom.ExternalId).Return(testPrivateRoom, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.joinRoom(rr, authedRequest(t, http.MethodPost, "/api/memberships/join", RoomActionRequest{
			RoomId: testPrivateRoom.ExternalId,
		}, testAccount.Id))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("joining twice conflicts", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", testAccount.Id).Return(testAccount, nil).Once()
		mockRepo.On("GetRoomByExternalId", testPublicRoom.ExternalId).Return(testPublicRoom, nil).Once()
		mockRepo.On("CreateMembership", testPublicRoom.Id, testAccount.Id).Return(database.Membership{}, database.ErrAlreadyExists).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.joinRoom(rr, authedRequest(t, http.MethodPost, "/api/memberships/join", RoomActionRequest{
			RoomId: testPublicRoom.ExternalId,
		}, testAccount.Id))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("owner cannot join own room", func(t *testing.T) {
		owner := database.User{Id: testPublicRoom.OwnerId, Username: "owner", EmailVerified: true}

		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", owner.Id).Return(owner, nil).Once()
		mockRepo.On("GetRoomByExternalId", testPublicRoom.ExternalId).Return(testPublicRoom, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.joinRoom(rr, authedRequest(t, http.MethodPost, "/api/memberships/join", RoomActionRequest{
			RoomId: testPublicRoom.ExternalId,
		}, owner.Id))

		assert.Equal(t, http.StatusConflict, rr.Code)
		mockRepo.AssertNotCalled(t, "CreateMembership", testPublicRoom.Id, owner.Id)
	})
}

func TestLeaveRoomHandler(t *testing.T) {
	t.Run("member leaves", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", testAccount.Id).Return(testAccount, nil).Once()
		mockRepo.On("GetRoomByExternalId", testPublicRoom.ExternalId).Return(testPublicRoom, nil).Once()
		mockRepo.On("DeleteMembership", testPublicRoom.Id, testAccount.Id).Return(nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.leaveRoom(rr, authedRequest(t, http.MethodPost, "/api/memberships/leave", RoomActionRequest{
			RoomId: testPublicRoom.ExternalId,
		}, testAccount.Id))

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("owner cannot leave", func(t *testing.T) {
		owner := database.User{Id: testPublicRoom.OwnerId, Username: "owner", EmailVerified: true}

		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", owner.Id).Return(owner, nil).Once()
		mockRepo.On("GetRoomByExternalId", testPublicRoom.ExternalId).Return(testPublicRoom, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.leaveRoom(rr, authedRequest(t, http.MethodPost, "/api/memberships/leave", RoomActionRequest{
			RoomId: testPublicRoom.ExternalId,
		}, owner.Id))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("leaving a room never joined", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", testAccount.Id).Return(testAccount, nil).Once()
		mockRepo.On("GetRoomByExternalId", testPublicRoom.ExternalId).Return(testPublicRoom, nil).Once()
		mockRepo.On("DeleteMembership", testPublicRoom.Id, testAccount.Id).Return(sql.ErrNoRows).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.leaveRoom(rr, authedRequest(t, http.MethodPost, "/api/memberships/leave", RoomActionRequest{
			RoomId: testPublicRoom.ExternalId,
		}, testAccount.Id))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestNotificationHandlers(t *testing.T) {
	t.Run("lists notifications", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("ListNotifications", testAccount.Id, 0).Return([]database.Notification{
			{Id: 1, UserId: testAccount.Id, Type: notification.TypeMessage, Message: "testuser sent a message"},
		}, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.listNotifications(rr, authedRequest(t, http.MethodGet, "/api/notifications", nil, testAccount.Id))

		assert.Equal(t, http.StatusOK, rr.Code)

		var got []types.Notification
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Len(t, got, 1, "expected 1 notification")
		assert.Equal(t, notification.TypeMessage, got[0].Type)
	})

	t.Run("returns unread count", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("UnreadNotificationCount", testAccount.Id).Return(3, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.unreadNotificationCount(rr, authedRequest(t, http.MethodGet, "/api/notifications/unread-count", nil, testAccount.Id))

		assert.Equal(t, http.StatusOK, rr.Code)

		var got map[string]int
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, 3, got["unread"])
	})

	t.Run("marks a notification read", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("MarkNotificationRead", 7, testAccount.Id).Return(nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.markNotificationRead(rr, authedRequest(t, http.MethodPost, "/api/notifications/read", MarkReadRequest{Id: 7}, testAccount.Id))

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("marking someone else's notification fails", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("MarkNotificationRead", 7, testAccount.Id).Return(sql.ErrNoRows).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.markNotificationRead(rr, authedRequest(t, http.MethodPost, "/api/notifications/read", MarkReadRequest{Id: 7}, testAccount.Id))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("marks all read", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("MarkAllNotificationsRead", testAccount.Id).Return(nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.markAllNotificationsRead(rr, authedRequest(t, http.MethodPost, "/api/notifications/read-all", nil, testAccount.Id))

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}

func TestFollowHandlers(t *testing.T) {
	t.Run("follow notifies the followee", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", testAccount.Id).Return(testAccount, nil).Once()
		mockRepo.On("GetAccountByUsername", receiverAccount.Username).Return(receiverAccount, nil).Once()
		mockRepo.On("CreateFollow", testAccount.Id, receiverAccount.Id).Return(database.Follow{Id: 1}, nil).Once()
		mockRepo.On("CreateNotification", mock.MatchedBy(func(params database.CreateNotificationParams) bool {
			return params.UserId == receiverAccount.Id && params.Type == notification.TypeFollow
		})).Return(database.Notification{}, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.follow(rr, authedRequest(t, http.MethodPost, "/api/follows", UserActionRequest{
			Username: receiverAccount.Username,
		}, testAccount.Id))

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("cannot follow yourself", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", testAccount.Id).Return(testAccount, nil).Once()
		mockRepo.On("GetAccountByUsername", testAccount.Username).Return(testAccount, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.follow(rr, authedRequest(t, http.MethodPost, "/api/follows", UserActionRequest{
			Username: testAccount.Username,
		}, testAccount.Id))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unfollow removes the edge", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", testAccount.Id).Return(testAccount, nil).Once()
		mockRepo.On("GetAccountByUsername", receiverAccount.Username).Return(receiverAccount, nil).Once()
		mockRepo.On("DeleteFollow", testAccount.Id, receiverAccount.Id).Return(nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.unfollow(rr, authedRequest(t, http.MethodDelete, "/api/follows?username="+receiverAccount.Username, nil, testAccount.Id))

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}

func TestFriendRequestHandlers(t *testing.T) {
	pending := database.FriendRequest{
		Id:         1,
		SenderId:   testAccount.Id,
		ReceiverId: receiverAccount.Id,
		Status:     database.FriendRequestPending,
	}

	t.Run("sends a friend request", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", testAccount.Id).Return(testAccount, nil).Once()
		mockRepo.On("GetAccountByUsername", receiverAccount.Username).Return(receiverAccount, nil).Once()
		mockRepo.On("CreateFriendRequest", testAccount.Id, receiverAccount.Id).Return(pending, nil).Once()
		mockRepo.On("CreateNotification", mock.MatchedBy(func(params database.CreateNotificationParams) bool {
			return params.UserId == receiverAccount.Id && params.Type == notification.TypeFriendRequest
		})).Return(database.Notification{}, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.sendFriendRequest(rr, authedRequest(t, http.MethodPost, "/api/friend-requests", UserActionRequest{
			Username: receiverAccount.Username,
		}, testAccount.Id))

		assert.Equal(t, http.StatusCreated, rr.Code)

		var got types.FriendRequest
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, database.FriendRequestPending, got.Status)
	})

	t.Run("receiver accepts and sender is notified", func(t *testing.T) {
		accepted := pending
		accepted.Status = database.FriendRequestAccepted

		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", receiverAccount.Id).Return(receiverAccount, nil).Once()
		mockRepo.On("GetFriendRequestById", pending.Id).Return(pending, nil).Once()
		mockRepo.On("UpdateFriendRequestStatus", pending.Id, database.FriendRequestAccepted).Return(accepted, nil).Once()
		mockRepo.On("CreateNotification", mock.MatchedBy(func(params database.CreateNotificationParams) bool {
			return params.UserId == pending.SenderId && params.Type == notification.TypeFriendResponse
		})).Return(database.Notification{}, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.respondFriendRequest(rr, authedRequest(t, http.MethodPost, "/api/friend-requests/respond", RespondRequest{
			Id:     pending.Id,
			Action: "accept",
		}, receiverAccount.Id))

		assert.Equal(t, http.StatusOK, rr.Code)

		var got types.FriendRequest
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, database.FriendRequestAccepted, got.Status)
	})

	t.Run("receiver declines and the sender is told so", func(t *testing.T) {
		declined := pending
		declined.Status = database.FriendRequestDeclined

		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", receiverAccount.Id).Return(receiverAccount, nil).Once()
		mockRepo.On("GetFriendRequestById", pending.Id).Return(pending, nil).Once()
		mockRepo.On("UpdateFriendRequestStatus", pending.Id, database.FriendRequestDeclined).Return(declined, nil).Once()
		mockRepo.On("CreateNotification", mock.MatchedBy(func(params database.CreateNotificationParams) bool {
			return params.UserId == pending.SenderId &&
				params.Message == "receiver declined your friend request"
		})).Return(database.Notification{}, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.respondFriendRequest(rr, authedRequest(t, http.MethodPost, "/api/friend-requests/respond", RespondRequest{
			Id:     pending.Id,
			Action: "decline",
		}, receiverAccount.Id))

		assert.Equal(t, http.StatusOK, rr.Code)

		var got types.FriendRequest
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, database.FriendRequestDeclined, got.Status)
	})

	t.Run("only the receiver may respond", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", testAccount.Id).Return(testAccount, nil).Once()
		mockRepo.On("GetFriendRequestById", pending.Id).Return(pending, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.respondFriendRequest(rr, authedRequest(t, http.MethodPost, "/api/friend-requests/respond", RespondRequest{
			Id:     pending.Id,
			Action: "accept",
		}, testAccount.Id))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestListInvitationsHandlers(t *testing.T) {
	invs := []database.Invitation{
		{Id: 1, RoomId: 20, SenderId: 3, ReceiverId: testAccount.Id, Status: database.InvitationPending},
	}

	t.Run("received", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("ListInvitationsForReceiver", testAccount.Id).Return(invs, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.listReceivedInvitations(rr, authedRequest(t, http.MethodGet, "/api/invitations", nil, testAccount.Id))

		assert.Equal(t, http.StatusOK, rr.Code)

		var got []types.Invitation
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Len(t, got, 1, "expected 1 invitation")
	})

	t.Run("sent", func(t *testing.T) {
		mockRepo := &database.MockSocialRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("ListInvitationsForSender", testAccount.Id).Return([]database.Invitation{}, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		app.listSentInvitations(rr, authedRequest(t, http.MethodGet, "/api/invitations/sent", nil, testAccount.Id))

		assert.Equal(t, http.StatusOK, rr.Code)

		var got []types.Invitation
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Empty(t, got, "expected no invitations")
	})
}

func TestListMembersHandler(t *testing.T) {
	mockRepo := &database.MockSocialRepository{}
	defer mockRepo.AssertExpectations(t)
	mockRepo.On("GetRoomByExternalId", testPublicRoom.ExternalId).Return(testPublicRoom, nil).Once()
	mockRepo.On("ListMembers", testPublicRoom.Id).Return([]database.User{
		{Id: 1, Username: "testuser"},
		{Id: 3, Username: "owner"},
	}, nil).Once()

	app := newTestApp(t, mockRepo)

	rr := httptest.NewRecorder()
	app.listMembers(rr, authedRequest(t, http.MethodGet, "/api/memberships?room_id="+testPublicRoom.ExternalId, nil, testAccount.Id))

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []types.User
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Len(t, got, 2, "expected 2 members")
}
