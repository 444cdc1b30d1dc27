package server

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/acrispino/socialchat/internal/access"
	"github.com/acrispino/socialchat/internal/database"
	"github.com/acrispino/socialchat/internal/notification"
	"github.com/acrispino/socialchat/internal/stats"
	"github.com/acrispino/socialchat/internal/types"
)

// SubmitError is a structured ingest failure returned to the single
// submitting session; it never affects other sessions.
type SubmitError struct {
	Code    string
	Message string
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func submitErr(code, msg string) *SubmitError {
	return &SubmitError{Code: code, Message: msg}
}

// Pipeline validates, persists, and fans out chat messages. Validation
// and authorization fail fast with no side effects; once the message row
// is written, notification and broadcast problems are best-effort and
// can no longer fail the submission.
type Pipeline struct {
	log      *log.Logger
	db       database.SocialRepository
	resolver *access.Resolver
	notifier *notification.Notifier
	cs       *ChatServer
	stats    stats.StatsProvider
}

func NewPipeline(logger *log.Logger, db database.SocialRepository, resolver *access.Resolver,
	notifier *notification.Notifier, cs *ChatServer, su stats.StatsProvider) *Pipeline {
	return &Pipeline{
		log:      logger,
		db:       db,
		resolver: resolver,
		notifier: notifier,
		cs:       cs,
		stats:    su,
	}
}

func (p *Pipeline) Submit(user types.User, roomId, content, imageUrl string) (*types.Message, *SubmitError) {
	if user.Id == 0 {
		return nil, submitErr(CodeUnauthenticated, "authentication required")
	}

	if strings.TrimSpace(content) == "" {
		return nil, submitErr(CodeInvalidMessage, "message content is required")
	}

	room, err := p.db.GetRoomByExternalId(roomId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, submitErr(CodeRoomNotFound, "room not found")
		}
		p.log.Println("GetRoomByExternalId:", err)
		return nil, submitErr(CodeStorageFailure, "internal error")
	}

	if !user.EmailVerified {
		return nil, submitErr(CodeEmailVerificationRequired, "email verification required")
	}

	level, err := p.resolver.Resolve(user.Id, room)
	if err != nil {
		p.log.Println("resolve access:", err)
		return nil, submitErr(CodeStorageFailure, "internal error")
	}
	if !level.Granted() {
		return nil, submitErr(accessErrorCode(level), "access denied")
	}

	saved, err := p.db.CreateMessage(database.CreateMessageParams{
		RoomId:   room.Id,
		UserId:   user.Id,
		Content:  content,
		ImageUrl: imageUrl,
	})
	if err != nil {
		p.log.Println("CreateMessage:", err)
		return nil, submitErr(CodeStorageFailure, "failed to save message")
	}

	p.stats.Incr("NumMessages")

	msg := &types.Message{
		Id:        saved.Id,
		RoomId:    saved.RoomId,
		UserId:    saved.UserId,
		Username:  user.Username,
		Content:   saved.Content,
		ImageUrl:  saved.ImageUrl,
		Timestamp: saved.CreatedAt,
	}

	p.cs.BroadcastRoom(room.ExternalId, NewMessageEvent(room.ExternalId, msg))
	p.notifyRecipients(user, room, saved.Id)

	return msg, nil
}

// notifyRecipients writes a durable notification for everyone with
// standing access to the room except the sender, then signals their live
// sessions. Fully best-effort: failures are logged, never returned.
func (p *Pipeline) notifyRecipients(sender types.User, room database.Room, messageId int) {
	recipientIds, err := p.db.RoomRecipientIds(room.Id)
	if err != nil {
		p.log.Println("RoomRecipientIds:", err)
		return
	}

	recipients := recipientIds[:0]
	for _, id := range recipientIds {
		if id != sender.Id {
			recipients = append(recipients, id)
		}
	}

	p.notifier.Notify(recipients, database.CreateNotificationParams{
		Type:       notification.TypeMessage,
		ActorId:    sender.Id,
		EntityId:   messageId,
		EntityType: "message",
		Message:    fmt.Sprintf("%s sent a message in %s", sender.Username, room.Name),
	})
}

func accessErrorCode(level access.Level) string {
	if level == access.MustJoin {
		return CodeMustJoin
	}
	return CodeAccessDenied
}
