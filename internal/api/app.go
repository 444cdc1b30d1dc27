package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/acrispino/socialchat/internal/access"
	"github.com/acrispino/socialchat/internal/config"
	"github.com/acrispino/socialchat/internal/database"
	"github.com/acrispino/socialchat/internal/notification"
	"github.com/acrispino/socialchat/internal/server"
	"github.com/gorilla/handlers"
	"github.com/teris-io/shortid"
)

type SocialChatApp struct {
	log             *log.Logger
	db              database.SocialRepository
	mux             *http.Server
	cs              *server.ChatServer
	resolver        *access.Resolver
	notifier        *notification.Notifier
	signingKey      []byte
	allowedOrigins  []string
	generateShortId func() (string, error)
}

func NewSocialChatApp(mux *http.ServeMux, logger *log.Logger, cs *server.ChatServer,
	db database.SocialRepository, cfg *config.Config) *SocialChatApp {
	s := &SocialChatApp{
		log:             logger,
		db:              db,
		cs:              cs,
		resolver:        access.NewResolver(db),
		notifier:        notification.NewNotifier(logger, db, cs),
		signingKey:      cfg.SigningKey,
		allowedOrigins:  cfg.AllowedOrigins,
		generateShortId: shortid.Generate,
	}

	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("POST /api/auth/verify", s.verifyEmail)
	mux.Handle("GET /api/auth/session", s.authMiddleware(s.session))
	mux.Handle("GET /api/auth/logout", s.authMiddleware(s.logout))

	mux.Handle("POST /api/rooms", s.authMiddleware(s.createRoom))
	mux.Handle("GET /api/rooms", s.authMiddleware(s.getRoom))
	mux.Handle("DELETE /api/rooms", s.authMiddleware(s.deleteRoom))
	mux.Handle("GET /api/rooms/public", s.authMiddleware(s.listPublicRooms))
	mux.Handle("GET /api/rooms/mine", s.authMiddleware(s.listMyRooms))
	mux.Handle("GET /api/messages", s.authMiddleware(s.getMessages))

	mux.Handle("POST /api/invitations", s.authMiddleware(s.sendInvitation))
	mux.Handle("POST /api/invitations/respond", s.authMiddleware(s.respondInvitation))
	mux.Handle("GET /api/invitations", s.authMiddleware(s.listReceivedInvitations))
	mux.Handle("GET /api/invitations/sent", s.authMiddleware(s.listSentInvitations))

	mux.Handle("POST /api/memberships/join", s.authMiddleware(s.joinRoom))
	mux.Handle("POST /api/memberships/leave", s.authMiddleware(s.leaveRoom))
	mux.Handle("GET /api/memberships", s.authMiddleware(s.listMembers))

	mux.Handle("GET /api/notifications", s.authMiddleware(s.listNotifications))
	mux.Handle("GET /api/notifications/unread-count", s.authMiddleware(s.unreadNotificationCount))
	mux.Handle("POST /api/notifications/read", s.authMiddleware(s.markNotificationRead))
	mux.Handle("POST /api/notifications/read-all", s.authMiddleware(s.markAllNotificationsRead))

	mux.Handle("POST /api/follows", s.authMiddleware(s.follow))
	mux.Handle("DELETE /api/follows", s.authMiddleware(s.unfollow))
	mux.Handle("POST /api/friend-requests", s.authMiddleware(s.sendFriendRequest))
	mux.Handle("POST /api/friend-requests/respond", s.authMiddleware(s.respondFriendRequest))

	// identity is established by the auth frame on the socket itself
	mux.HandleFunc("GET /ws", s.serveWs)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *SocialChatApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *SocialChatApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

func (s *SocialChatApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}
