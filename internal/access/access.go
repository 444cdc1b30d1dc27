// Package access decides what a user may do with a room. The same
// resolver backs the HTTP message-history endpoint and the websocket
// ingest path so the two can never disagree.
package access

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/acrispino/socialchat/internal/database"
)

type Level int

const (
	// Denied is the generic refusal for private rooms.
	Denied Level = iota
	// SelfChatDenied marks refusal from a self-chat room that belongs
	// to someone else.
	SelfChatDenied
	// MustJoin is a refusal from a public room the user has not joined;
	// clients use it to prompt a join action instead of a plain 403.
	MustJoin
	Owner
	PublicMember
	PrivateInvited
)

func (l Level) String() string {
	switch l {
	case SelfChatDenied:
		return "self_chat_denied"
	case MustJoin:
		return "must_join"
	case Owner:
		return "owner"
	case PublicMember:
		return "public_member"
	case PrivateInvited:
		return "private_invited"
	default:
		return "denied"
	}
}

// Granted reports whether the level allows reading and writing messages.
// Owner, member and invitee rights are identical at this layer;
// Membership.IsAdmin is stored but deliberately not consulted.
func (l Level) Granted() bool {
	return l == Owner || l == PublicMember || l == PrivateInvited
}

type Resolver struct {
	db database.SocialRepository
}

func NewResolver(db database.SocialRepository) *Resolver {
	return &Resolver{db: db}
}

// Resolve classifies userId's rights over room. Precedence is fixed:
// ownership, then the self-chat wall, then public membership, then
// private invitation.
func (r *Resolver) Resolve(userId int, room database.Room) (Level, error) {
	if room.OwnerId == userId {
		return Owner, nil
	}

	if room.IsSelfChat {
		return SelfChatDenied, nil
	}

	if room.IsPublic {
		_, err := r.db.GetMembership(room.Id, userId)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return MustJoin, nil
			}
			return Denied, fmt.Errorf("get membership: %w", err)
		}
		return PublicMember, nil
	}

	_, err := r.db.GetAcceptedInvitation(room.Id, userId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Denied, nil
		}
		return Denied, fmt.Errorf("get invitation: %w", err)
	}

	return PrivateInvited, nil
}
