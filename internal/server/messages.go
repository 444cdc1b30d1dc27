package server

import (
	"time"

	"github.com/acrispino/socialchat/internal/types"
)

// Client to server frame types.
const (
	TypeAuth    = "auth"
	TypeEnter   = "enter"
	TypeLeave   = "leave"
	TypeMessage = "message"
)

// Server to client frame types.
const (
	TypeOk                   = "ok"
	TypeNewMessage           = "new_message"
	TypeRefreshNotifications = "refresh_notifications"
	TypeError                = "error"
)

// Machine-checkable error codes carried on error frames. Clients route
// email_verification_required to the verification flow and must_join to
// a join prompt; everything else renders generically.
const (
	CodeUnauthenticated           = "unauthenticated"
	CodeEmailVerificationRequired = "email_verification_required"
	CodeAccessDenied              = "access_denied"
	CodeMustJoin                  = "must_join"
	CodeRoomNotFound              = "room_not_found"
	CodeInvalidMessage            = "invalid_message"
	CodeStorageFailure            = "storage_failure"
)

type ClientMessage struct {
	Type     string `json:"type"`
	UserId   int    `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	RoomId   string `json:"room_id,omitempty"`
	Content  string `json:"content,omitempty"`
	ImageUrl string `json:"image_url,omitempty"`
}

// ServerMessage is the single outbound frame shape. Message holds a
// *types.Message on new_message frames and a human-readable string on
// error frames.
type ServerMessage struct {
	Type      string    `json:"type"`
	RoomId    string    `json:"room_id,omitempty"`
	Code      string    `json:"code,omitempty"`
	Message   any       `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func OkAck() *ServerMessage {
	return &ServerMessage{
		Type:      TypeOk,
		Timestamp: Now(),
	}
}

func NewMessageEvent(roomId string, msg *types.Message) *ServerMessage {
	return &ServerMessage{
		Type:      TypeNewMessage,
		RoomId:    roomId,
		Message:   msg,
		Timestamp: Now(),
	}
}

func RefreshNotificationsEvent() *ServerMessage {
	return &ServerMessage{
		Type:      TypeRefreshNotifications,
		Timestamp: Now(),
	}
}

func ErrorMessage(code, text string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeError,
		Code:      code,
		Message:   text,
		Timestamp: Now(),
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
