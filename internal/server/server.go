package server

import (
	"context"
	"log"
	"sync"

	"github.com/acrispino/socialchat/internal/access"
	"github.com/acrispino/socialchat/internal/database"
	"github.com/acrispino/socialchat/internal/notification"
	"github.com/acrispino/socialchat/internal/stats"
	"github.com/acrispino/socialchat/internal/types"
)

// ChatServer is the connection registry: the only holder of live-session
// state. Handlers run on arbitrary goroutines, so every map mutation is
// guarded by the mutex.
type ChatServer struct {
	log      *log.Logger
	db       database.SocialRepository
	resolver *access.Resolver
	pipeline *Pipeline
	stats    stats.StatsProvider

	mu sync.Mutex
	// clients holds every live session, authenticated or not
	clients map[*Client]struct{}
	// userClients indexes authenticated sessions by user id
	userClients map[int]map[*Client]struct{}
	// roomSubs indexes sessions by the external id of each room they
	// have entered; this bounds chat fan-out to the authorized set
	roomSubs map[string]map[*Client]struct{}

	wg sync.WaitGroup
}

func NewChatServer(logger *log.Logger, db database.SocialRepository, su stats.StatsProvider) (*ChatServer, error) {
	cs := &ChatServer{
		log:         logger,
		db:          db,
		resolver:    access.NewResolver(db),
		stats:       su,
		clients:     make(map[*Client]struct{}),
		userClients: make(map[int]map[*Client]struct{}),
		roomSubs:    make(map[string]map[*Client]struct{}),
	}

	notifier := notification.NewNotifier(logger, db, cs)
	cs.pipeline = NewPipeline(logger, db, cs.resolver, notifier, cs, su)

	su.RegisterMetric("NumActiveSessions")
	su.RegisterMetric("NumAuthenticatedSessions")
	su.RegisterMetric("NumMessages")

	return cs, nil
}

func (cs *ChatServer) Pipeline() *Pipeline {
	return cs.pipeline
}

// RegisterClient adds a new, not yet authenticated session.
func (cs *ChatServer) RegisterClient(c *Client) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.clients[c] = struct{}{}
	cs.wg.Add(1)
	cs.stats.Incr("NumActiveSessions")
}

// AuthenticateClient binds a verified identity to the session. Chat
// operations are rejected until this has happened.
func (cs *ChatServer) AuthenticateClient(c *Client, user types.User) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	c.user = user
	c.authenticated = true

	if cs.userClients[user.Id] == nil {
		cs.userClients[user.Id] = make(map[*Client]struct{})
	}
	cs.userClients[user.Id][c] = struct{}{}
	cs.stats.Incr("NumAuthenticatedSessions")

	cs.log.Printf("authenticated session for %q", user.Username)
}

// DeregisterClient releases all registry state for the session. Called
// from the read pump's deferred cleanup on every exit path so entries
// cannot leak.
func (cs *ChatServer) DeregisterClient(c *Client) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if _, ok := cs.clients[c]; !ok {
		return
	}

	delete(cs.clients, c)
	cs.stats.Decr("NumActiveSessions")

	if c.authenticated {
		if userClients, ok := cs.userClients[c.user.Id]; ok {
			delete(userClients, c)
			if len(userClients) == 0 {
				delete(cs.userClients, c.user.Id)
			}
		}
		cs.stats.Decr("NumAuthenticatedSessions")
	}

	for roomId, subs := range cs.roomSubs {
		delete(subs, c)
		if len(subs) == 0 {
			delete(cs.roomSubs, roomId)
		}
	}

	cs.wg.Done()
}

// SubscribeRoom adds the session to a room's live-delivery set. Callers
// must have resolved access first.
func (cs *ChatServer) SubscribeRoom(c *Client, roomId string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.roomSubs[roomId] == nil {
		cs.roomSubs[roomId] = make(map[*Client]struct{})
	}
	cs.roomSubs[roomId][c] = struct{}{}
}

// DropRoom clears a deleted room's live-delivery set.
func (cs *ChatServer) DropRoom(roomId string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	delete(cs.roomSubs, roomId)
}

func (cs *ChatServer) UnsubscribeRoom(c *Client, roomId string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if subs, ok := cs.roomSubs[roomId]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(cs.roomSubs, roomId)
		}
	}
}

// BroadcastRoom delivers msg to every session currently entered into the
// room. Sends are non-blocking; a session with a full send queue misses
// the frame rather than stalling the rest.
func (cs *ChatServer) BroadcastRoom(roomId string, msg *ServerMessage) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for c := range cs.roomSubs[roomId] {
		c.queueMessage(msg)
	}
}

// RefreshNotifications pushes the refresh signal to every live session
// of the given users. Satisfies notification.Refresher.
func (cs *ChatServer) RefreshNotifications(userIds []int) {
	msg := RefreshNotificationsEvent()

	cs.mu.Lock()
	defer cs.mu.Unlock()

	for _, userId := range userIds {
		for c := range cs.userClients[userId] {
			c.queueMessage(msg)
		}
	}
}

func (cs *ChatServer) Shutdown(ctx context.Context) error {
	cs.mu.Lock()
	for c := range cs.clients {
		c.stopClient()
	}
	cs.mu.Unlock()

	done := make(chan struct{})
	go func() {
		cs.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
