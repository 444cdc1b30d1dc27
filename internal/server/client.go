package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/acrispino/socialchat/internal/types"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one live transport session. It starts unauthenticated; the
// first auth frame binds an identity via the registry. The read pump is
// the only writer of the identity fields after authentication.
type Client struct {
	conn          *websocket.Conn
	chatServer    *ChatServer
	log           *log.Logger
	user          types.User
	authenticated bool
	send          chan *ServerMessage
	stop          chan struct{}
	stopOnce      sync.Once
}

func NewClient(conn *websocket.Conn, cs *ChatServer, l *log.Logger) *Client {
	return &Client{
		conn:       conn,
		chatServer: cs,
		log:        l,
		send:       make(chan *ServerMessage, 256),
		stop:       make(chan struct{}),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Println("write exiting")
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(msg)
			if err != nil {
				c.log.Println("failed to serialize message:", err)
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Println("read exiting")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			// bad JSON is logged and dropped; the connection stays up
			c.log.Println("error parsing message:", err)
			c.queueMessage(ErrorMessage(CodeInvalidMessage, "invalid message format"))
			continue
		}

		c.dispatch(&msg)
	}
}

func (c *Client) dispatch(msg *ClientMessage) {
	if msg.Type == TypeAuth {
		c.handleAuth(msg)
		return
	}

	if !c.authenticated {
		c.queueMessage(ErrorMessage(CodeUnauthenticated, "authentication required"))
		return
	}

	switch msg.Type {
	case TypeEnter:
		c.handleEnter(msg)
	case TypeLeave:
		c.chatServer.UnsubscribeRoom(c, msg.RoomId)
		c.queueMessage(OkAck())
	case TypeMessage:
		c.handleMessage(msg)
	default:
		c.queueMessage(ErrorMessage(CodeInvalidMessage, "unknown message type"))
	}
}

// handleAuth verifies the claimed identity against the account store and
// binds it to the session. The username in the frame is advisory only.
func (c *Client) handleAuth(msg *ClientMessage) {
	if c.authenticated {
		c.queueMessage(ErrorMessage(CodeInvalidMessage, "session already authenticated"))
		return
	}

	account, err := c.chatServer.db.GetAccountById(msg.UserId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.queueMessage(ErrorMessage(CodeUnauthenticated, "unknown user"))
		} else {
			c.log.Println("GetAccountById:", err)
			c.queueMessage(ErrorMessage(CodeStorageFailure, "internal error"))
		}
		return
	}

	c.chatServer.AuthenticateClient(c, types.User{
		Id:            account.Id,
		Username:      account.Username,
		EmailAddress:  account.EmailAddress,
		EmailVerified: account.EmailVerified,
	})

	c.queueMessage(OkAck())
}

// handleEnter subscribes the session to a room's live delivery after
// resolving access, so broadcasts only ever reach authorized sessions.
func (c *Client) handleEnter(msg *ClientMessage) {
	room, err := c.chatServer.db.GetRoomByExternalId(msg.RoomId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.queueMessage(ErrorMessage(CodeRoomNotFound, "room not found"))
		} else {
			c.log.Println("GetRoomByExternalId:", err)
			c.queueMessage(ErrorMessage(CodeStorageFailure, "internal error"))
		}
		return
	}

	level, err := c.chatServer.resolver.Resolve(c.user.Id, room)
	if err != nil {
		c.log.Println("resolve access:", err)
		c.queueMessage(ErrorMessage(CodeStorageFailure, "internal error"))
		return
	}

	if !level.Granted() {
		c.queueMessage(ErrorMessage(accessErrorCode(level), "access denied"))
		return
	}

	c.chatServer.SubscribeRoom(c, room.ExternalId)
	c.queueMessage(OkAck())
}

func (c *Client) handleMessage(msg *ClientMessage) {
	_, submitErr := c.chatServer.pipeline.Submit(c.user, msg.RoomId, msg.Content, msg.ImageUrl)
	if submitErr != nil {
		c.queueMessage(ErrorMessage(submitErr.Code, submitErr.Message))
		return
	}

	c.queueMessage(OkAck())
}

func (c *Client) queueMessage(msg *ServerMessage) bool {
	select {
	case c.send <- msg:
	default:
		c.log.Println("failed to send message to client, channel is full")
		return false
	}

	return true
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Client) cleanup() {
	c.chatServer.DeregisterClient(c)
	c.stopClient()
}
