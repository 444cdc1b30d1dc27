package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/acrispino/socialchat/internal/database"
	"github.com/acrispino/socialchat/internal/server"
	"github.com/acrispino/socialchat/internal/types"
	"github.com/gorilla/websocket"
)

type CreateRoomRequest struct {
	Name       string   `json:"name"`
	IsSelfChat bool     `json:"is_self_chat"`
	IsPublic   bool     `json:"is_public"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
}

func toApiRoom(room database.Room) types.Room {
	return types.Room{
		Id:           room.Id,
		ExternalId:   room.ExternalId,
		Name:         room.Name,
		OwnerId:      room.OwnerId,
		IsSelfChat:   room.IsSelfChat,
		IsPublic:     room.IsPublic,
		Category:     room.Category,
		Tags:         room.Tags,
		TotalMembers: room.TotalMembers,
		CreatedAt:    room.CreatedAt,
		UpdatedAt:    room.UpdatedAt,
	}
}

// requireVerifiedAccount loads the authenticated account and rejects the
// request with email_verification_required when the address is not yet
// verified. All state-mutating social and chat endpoints go through it.
func (s *SocialChatApp) requireVerifiedAccount(w http.ResponseWriter, r *http.Request) (database.User, bool) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return database.User{}, false
	}

	user, err := s.db.GetAccountById(userId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewUnauthorizedError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return database.User{}, false
	}

	if !user.EmailVerified {
		errResp := NewEmailVerificationRequiredError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return database.User{}, false
	}

	return user, true
}

func (s *SocialChatApp) roomByQuery(w http.ResponseWriter, r *http.Request, key string) (database.Room, bool) {
	externalId := r.URL.Query().Get(key)
	if externalId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return database.Room{}, false
	}

	room, err := s.db.GetRoomByExternalId(externalId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return database.Room{}, false
	}

	return room, true
}

func (s *SocialChatApp) createRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireVerifiedAccount(w, r)
	if !ok {
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Name == "" || (req.IsSelfChat && req.IsPublic) {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	sid, err := s.generateShortId()
	if err != nil {
		s.log.Print("generateShortId:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	newRoom, err := s.db.CreateRoom(database.CreateRoomParams{
		Name:       req.Name,
		ExternalId: sid,
		OwnerId:    user.Id,
		IsSelfChat: req.IsSelfChat,
		IsPublic:   req.IsPublic,
		Category:   req.Category,
		Tags:       req.Tags,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, toApiRoom(newRoom))
}

func (s *SocialChatApp) getRoom(w http.ResponseWriter, r *http.Request) {
	room, ok := s.roomByQuery(w, r, "id")
	if !ok {
		return
	}

	s.writeJson(w, http.StatusOK, toApiRoom(room))
}

func (s *SocialChatApp) deleteRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireVerifiedAccount(w, r)
	if !ok {
		return
	}

	room, ok := s.roomByQuery(w, r, "id")
	if !ok {
		return
	}

	// only the creator may delete a room
	if room.OwnerId != user.Id {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteRoom(room.Id); err != nil {
		s.log.Println("delete room:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.cs.DropRoom(room.ExternalId)
	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *SocialChatApp) listPublicRooms(w http.ResponseWriter, r *http.Request) {
	dbRooms, err := s.db.ListPublicRooms()
	if err != nil {
		s.log.Println("list public rooms:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	rooms := make([]types.Room, 0, len(dbRooms))
	for _, room := range dbRooms {
		rooms = append(rooms, toApiRoom(room))
	}

	s.writeJson(w, http.StatusOK, rooms)
}

func (s *SocialChatApp) listMyRooms(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbRooms, err := s.db.ListRoomsForAccount(userId)
	if err != nil {
		s.log.Println("list rooms:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	rooms := make([]types.Room, 0, len(dbRooms))
	for _, room := range dbRooms {
		rooms = append(rooms, toApiRoom(room))
	}

	s.writeJson(w, http.StatusOK, rooms)
}

// getMessages serves room history behind the same access resolver the
// websocket ingest path uses.
func (s *SocialChatApp) getMessages(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, ok := s.roomByQuery(w, r, "room_id")
	if !ok {
		return
	}

	level, err := s.resolver.Resolve(userId, room)
	if err != nil {
		s.log.Println("resolve access:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !level.Granted() {
		errResp := accessError(level)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var before, limit int

	beforeStr := r.URL.Query().Get("before")
	if beforeStr != "" {
		before, err = strconv.Atoi(beforeStr)
		if err != nil {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}

	limitStr := r.URL.Query().Get("limit")
	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}

	messages, err := s.db.GetMessages(room.Id, before, limit)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	userMessages := make([]types.Message, 0, len(messages))
	for _, msg := range messages {
		userMessages = append(userMessages, types.Message{
			Id:        msg.Id,
			RoomId:    msg.RoomId,
			UserId:    msg.UserId,
			Username:  msg.Username,
			Content:   msg.Content,
			ImageUrl:  msg.ImageUrl,
			Timestamp: msg.CreatedAt,
		})
	}

	s.writeJson(w, http.StatusOK, userMessages)
}

func (s *SocialChatApp) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				// if no origin header, allow the request
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(conn, s.cs, s.log)

	s.cs.RegisterClient(client)
	go client.Write()
	go client.Read()
}
