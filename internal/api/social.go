package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/acrispino/socialchat/internal/database"
	"github.com/acrispino/socialchat/internal/notification"
	"github.com/acrispino/socialchat/internal/types"
)

type SendInvitationRequest struct {
	RoomId   string `json:"room_id"`
	Username string `json:"username"`
}

type RespondRequest struct {
	Id     int    `json:"id"`
	Action string `json:"action"`
}

type RoomActionRequest struct {
	RoomId string `json:"room_id"`
}

type UserActionRequest struct {
	Username string `json:"username"`
}

type MarkReadRequest struct {
	Id int `json:"id"`
}

func toApiFriendRequest(fr database.FriendRequest) types.FriendRequest {
	return types.FriendRequest{
		Id:         fr.Id,
		SenderId:   fr.SenderId,
		ReceiverId: fr.ReceiverId,
		Status:     fr.Status,
		CreatedAt:  fr.CreatedAt,
		UpdatedAt:  fr.UpdatedAt,
	}
}

func toApiInvitation(inv database.Invitation) types.Invitation {
	return types.Invitation{
		Id:         inv.Id,
		RoomId:     inv.RoomId,
		SenderId:   inv.SenderId,
		ReceiverId: inv.ReceiverId,
		Status:     inv.Status,
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}
}

// sendInvitation creates a pending invitation to a private room.
// Duplicate sends while one is pending return the existing invitation.
func (s *SocialChatApp) sendInvitation(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireVerifiedAccount(w, r)
	if !ok {
		return
	}

	var req SendInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomId == "" || req.Username == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, err := s.db.GetRoomByExternalId(req.RoomId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// invitations exist only for private, non-self rooms and only the
	// creator can extend them
	if room.OwnerId != user.Id || room.IsSelfChat || room.IsPublic {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	receiver, err := s.db.GetAccountByUsername(req.Username)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if receiver.Id == user.Id {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	inv, err := s.db.CreateInvitation(room.Id, user.Id, receiver.Id)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.notifier.Notify([]int{receiver.Id}, database.CreateNotificationParams{
		Type:       notification.TypeRoomInvite,
		ActorId:    user.Id,
		EntityId:   inv.Id,
		EntityType: "invitation",
		Message:    fmt.Sprintf("%s invited you to %s", user.Username, room.Name),
	})

	s.writeJson(w, http.StatusCreated, toApiInvitation(inv))
}

// respondInvitation transitions a pending invitation to accepted or
// declined; both states are terminal.
func (s *SocialChatApp) respondInvitation(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireVerifiedAccount(w, r)
	if !ok {
		return
	}

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var status, verb string
	switch req.Action {
	case "accept":
		status = database.InvitationAccepted
		verb = "accepted"
	case "decline":
		status = database.InvitationDeclined
		verb = "declined"
	default:
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	inv, err := s.db.GetInvitationById(req.Id)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if inv.ReceiverId != user.Id {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	updated, err := s.db.UpdateInvitationStatus(inv.Id, status)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			// already responded; terminal states cannot be re-opened
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.notifier.Notify([]int{inv.SenderId}, database.CreateNotificationParams{
		Type:       notification.TypeInviteResponse,
		ActorId:    user.Id,
		EntityId:   inv.Id,
		EntityType: "invitation",
		Message:    fmt.Sprintf("%s %s your invitation", user.Username, verb),
	})

	s.writeJson(w, http.StatusOK, toApiInvitation(updated))
}

func (s *SocialChatApp) listReceivedInvitations(w http.ResponseWriter, r *http.Request) {
	s.listInvitations(w, r, s.db.ListInvitationsForReceiver)
}

func (s *SocialChatApp) listSentInvitations(w http.ResponseWriter, r *http.Request) {
	s.listInvitations(w, r, s.db.ListInvitationsForSender)
}

func (s *SocialChatApp) listInvitations(w http.ResponseWriter, r *http.Request, list func(int) ([]database.Invitation, error)) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbInvs, err := list(userId)
	if err != nil {
		s.log.Println("list invitations:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	invs := make([]types.Invitation, 0, len(dbInvs))
	for _, inv := range dbInvs {
		invs = append(invs, toApiInvitation(inv))
	}

	s.writeJson(w, http.StatusOK, invs)
}

func (s *SocialChatApp) joinRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireVerifiedAccount(w, r)
	if !ok {
		return
	}

	var req RoomActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, err := s.db.GetRoomByExternalId(req.RoomId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !room.IsPublic {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// the creator is an implicit member and never holds a row
	if room.OwnerId == user.Id {
		errResp := NewConflictError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	membership, err := s.db.CreateMembership(room.Id, user.Id)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrAlreadyExists) {
			errResp = NewConflictError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.notifier.Notify([]int{room.OwnerId}, database.CreateNotificationParams{
		Type:       notification.TypeRoomJoin,
		ActorId:    user.Id,
		EntityId:   room.Id,
		EntityType: "room",
		Message:    fmt.Sprintf("%s joined %s", user.Username, room.Name),
	})

	s.writeJson(w, http.StatusCreated, types.Membership{
		Id:        membership.Id,
		RoomId:    membership.RoomId,
		UserId:    membership.UserId,
		IsAdmin:   membership.IsAdmin,
		CreatedAt: membership.CreatedAt,
	})
}

func (s *SocialChatApp) leaveRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireVerifiedAccount(w, r)
	if !ok {
		return
	}

	var req RoomActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, err := s.db.GetRoomByExternalId(req.RoomId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// creators cannot abandon their own room
	if room.OwnerId == user.Id {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteMembership(room.Id, user.Id); err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *SocialChatApp) listMembers(w http.ResponseWriter, r *http.Request) {
	room, ok := s.roomByQuery(w, r, "room_id")
	if !ok {
		return
	}

	dbMembers, err := s.db.ListMembers(room.Id)
	if err != nil {
		s.log.Println("list members:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	members := make([]types.User, 0, len(dbMembers))
	for _, member := range dbMembers {
		members = append(members, types.User{
			Id:       member.Id,
			Username: member.Username,
		})
	}

	s.writeJson(w, http.StatusOK, members)
}

func (s *SocialChatApp) listNotifications(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var limit int
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}

	dbNotifications, err := s.db.ListNotifications(userId, limit)
	if err != nil {
		s.log.Println("list notifications:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	notifications := make([]types.Notification, 0, len(dbNotifications))
	for _, n := range dbNotifications {
		notifications = append(notifications, types.Notification{
			Id:         n.Id,
			UserId:     n.UserId,
			Type:       n.Type,
			ActorId:    n.ActorId,
			EntityId:   n.EntityId,
			EntityType: n.EntityType,
			Message:    n.Message,
			IsRead:     n.IsRead,
			CreatedAt:  n.CreatedAt,
		})
	}

	s.writeJson(w, http.StatusOK, notifications)
}

func (s *SocialChatApp) unreadNotificationCount(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	count, err := s.db.UnreadNotificationCount(userId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]int{"unread": count})
}

func (s *SocialChatApp) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.MarkNotificationRead(req.Id, userId); err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *SocialChatApp) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.MarkAllNotificationsRead(userId); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *SocialChatApp) follow(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireVerifiedAccount(w, r)
	if !ok {
		return
	}

	var req UserActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	followee, err := s.db.GetAccountByUsername(req.Username)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if followee.Id == user.Id {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := s.db.CreateFollow(user.Id, followee.Id); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.notifier.Notify([]int{followee.Id}, database.CreateNotificationParams{
		Type:       notification.TypeFollow,
		ActorId:    user.Id,
		EntityId:   user.Id,
		EntityType: "user",
		Message:    fmt.Sprintf("%s started following you", user.Username),
	})

	s.writeJson(w, http.StatusCreated, nil)
}

func (s *SocialChatApp) unfollow(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireVerifiedAccount(w, r)
	if !ok {
		return
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	followee, err := s.db.GetAccountByUsername(username)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteFollow(user.Id, followee.Id); err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *SocialChatApp) sendFriendRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireVerifiedAccount(w, r)
	if !ok {
		return
	}

	var req UserActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	receiver, err := s.db.GetAccountByUsername(req.Username)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if receiver.Id == user.Id {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	fr, err := s.db.CreateFriendRequest(user.Id, receiver.Id)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.notifier.Notify([]int{receiver.Id}, database.CreateNotificationParams{
		Type:       notification.TypeFriendRequest,
		ActorId:    user.Id,
		EntityId:   fr.Id,
		EntityType: "friend_request",
		Message:    fmt.Sprintf("%s sent you a friend request", user.Username),
	})

	s.writeJson(w, http.StatusCreated, toApiFriendRequest(fr))
}

func (s *SocialChatApp) respondFriendRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireVerifiedAccount(w, r)
	if !ok {
		return
	}

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var status, verb string
	switch req.Action {
	case "accept":
		status = database.FriendRequestAccepted
		verb = "accepted"
	case "decline":
		status = database.FriendRequestDeclined
		verb = "declined"
	default:
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	fr, err := s.db.GetFriendRequestById(req.Id)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if fr.ReceiverId != user.Id {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	updated, err := s.db.UpdateFriendRequestStatus(fr.Id, status)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.notifier.Notify([]int{fr.SenderId}, database.CreateNotificationParams{
		Type:       notification.TypeFriendResponse,
		ActorId:    user.Id,
		EntityId:   fr.Id,
		EntityType: "friend_request",
		Message:    fmt.Sprintf("%s %s your friend request", user.Username, verb),
	})

	s.writeJson(w, http.StatusOK, toApiFriendRequest(updated))
}
