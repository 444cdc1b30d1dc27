// Package notification fans one social or chat event out on two
// channels: a durable per-recipient row and an ephemeral refresh signal
// that tells connected clients to re-fetch immediately.
package notification

import (
	"log"

	"github.com/acrispino/socialchat/internal/database"
)

const (
	TypeMessage        = "message"
	TypeRoomInvite     = "room_invite"
	TypeInviteResponse = "invite_response"
	TypeRoomJoin       = "room_join"
	TypeFollow         = "follow"
	TypeFriendRequest  = "friend_request"
	TypeFriendResponse = "friend_response"
	TypePostLike       = "post_like"
	TypePostComment    = "post_comment"
)

// Refresher pushes the refresh_notifications signal to the live sessions
// of the given users. Implemented by the chat server's registry.
type Refresher interface {
	RefreshNotifications(userIds []int)
}

type Notifier struct {
	log       *log.Logger
	db        database.SocialRepository
	refresher Refresher
}

func NewNotifier(logger *log.Logger, db database.SocialRepository, refresher Refresher) *Notifier {
	return &Notifier{
		log:       logger,
		db:        db,
		refresher: refresher,
	}
}

// Notify writes one notification row per recipient, then signals their
// live sessions once. Storage failures are per-recipient: one bad insert
// is logged and the rest still go out, so a notification hiccup can never
// fail the event that caused it.
func (n *Notifier) Notify(recipients []int, params database.CreateNotificationParams) {
	var notified []int
	for _, userId := range recipients {
		params.UserId = userId
		if _, err := n.db.CreateNotification(params); err != nil {
			n.log.Printf("create notification for user %d: %v", userId, err)
			continue
		}

		notified = append(notified, userId)
	}

	if len(notified) > 0 {
		n.refresher.RefreshNotifications(notified)
	}
}
