package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const (
	invitationColumns = "id, room_id, sender_id, receiver_id, status, created_at, updated_at"
	roomColumns       = "id, external_id, name, owner_id, is_self_chat, is_public, category, tags, total_members, created_at, updated_at"
)

func (db *PgSocialRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (username, email, password_hash, verify_token, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $5) RETURNING id, username, email, email_verified",
		params.Username,
		params.EmailAddress,
		params.PasswordHash,
		params.VerifyToken,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.EmailVerified,
	)
	if isUniqueViolation(err) {
		return User{}, ErrAlreadyExists
	}

	return u, err
}

func (db *PgSocialRepository) GetAccountById(accountId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, email_verified, created_at, updated_at FROM accounts "+
			"WHERE id = $1 LIMIT 1",
		accountId,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
		&user.EmailVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgSocialRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, email_verified, password_hash FROM accounts "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
		&user.EmailVerified,
		&user.PasswordHash,
	)

	return user, err
}

func (db *PgSocialRepository) GetAccountByUsername(username string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, email_verified FROM accounts "+
			"WHERE username = $1 LIMIT 1",
		username,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
		&user.EmailVerified,
	)

	return user, err
}

func (db *PgSocialRepository) VerifyAccountEmail(token string) (User, error) {
	row := db.conn.QueryRow(
		"UPDATE accounts SET email_verified = TRUE, verify_token = '', updated_at = $2 "+
			"WHERE verify_token = $1 AND verify_token <> '' RETURNING id, username, email, email_verified",
		token,
		time.Now().UTC(),
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
		&user.EmailVerified,
	)

	return user, err
}

func (db *PgSocialRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	if params.IsSelfChat && params.IsPublic {
		return Room{}, fmt.Errorf("room cannot be both self-chat and public")
	}

	res := db.conn.QueryRow(
		"INSERT INTO rooms (external_id, name, owner_id, is_self_chat, is_public, category, tags, total_members, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8, $8) RETURNING "+roomColumns,
		params.ExternalId,
		params.Name,
		params.OwnerId,
		params.IsSelfChat,
		params.IsPublic,
		params.Category,
		pq.Array(params.Tags),
		time.Now().UTC(),
	)

	return scanRoom(res)
}

func (db *PgSocialRepository) GetRoomByExternalId(externalId string) (Room, error) {
	row := db.conn.QueryRow(
		"SELECT "+roomColumns+" FROM rooms WHERE external_id = $1 LIMIT 1",
		externalId,
	)

	return scanRoom(row)
}

func scanRoom(row *sql.Row) (Room, error) {
	var room Room
	err := row.Scan(
		&room.Id,
		&room.ExternalId,
		&room.Name,
		&room.OwnerId,
		&room.IsSelfChat,
		&room.IsPublic,
		&room.Category,
		pq.Array(&room.Tags),
		&room.TotalMembers,
		&room.CreatedAt,
		&room.UpdatedAt,
	)

	return room, err
}

func (db *PgSocialRepository) DeleteRoom(id int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, q := range []string{
		"DELETE FROM messages WHERE room_id = $1",
		"DELETE FROM invitations WHERE room_id = $1",
		"DELETE FROM memberships WHERE room_id = $1",
		"DELETE FROM rooms WHERE id = $1",
	} {
		if _, err = tx.Exec(q, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (db *PgSocialRepository) ListPublicRooms() ([]Room, error) {
	rows, err := db.conn.Query(
		"SELECT " + roomColumns + " FROM rooms WHERE is_public = TRUE ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRooms(rows)
}

func (db *PgSocialRepository) ListRoomsForAccount(accountId int) ([]Room, error) {
	rows, err := db.conn.Query(
		"SELECT DISTINCT r.id, r.external_id, r.name, r.owner_id, r.is_self_chat, r.is_public, r.category, r.tags, r.total_members, r.created_at, r.updated_at "+
			"FROM rooms r "+
			"LEFT JOIN memberships m ON m.room_id = r.id AND m.user_id = $1 "+
			"LEFT JOIN invitations i ON i.room_id = r.id AND i.receiver_id = $1 AND i.status = $2 "+
			"WHERE r.owner_id = $1 OR m.id IS NOT NULL OR i.id IS NOT NULL "+
			"ORDER BY r.created_at DESC",
		accountId,
		InvitationAccepted,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRooms(rows)
}

func collectRooms(rows *sql.Rows) ([]Room, error) {
	var rooms []Room
	for rows.Next() {
		var room Room
		if err := rows.Scan(
			&room.Id,
			&room.ExternalId,
			&room.Name,
			&room.OwnerId,
			&room.IsSelfChat,
			&room.IsPublic,
			&room.Category,
			pq.Array(&room.Tags),
			&room.TotalMembers,
			&room.CreatedAt,
			&room.UpdatedAt,
		); err != nil {
			return nil, err
		}

		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

// CreateInvitation inserts a pending invitation. A partial unique index
// allows at most one pending invitation per (room, receiver); when it
// fires the existing pending row is returned instead, making duplicate
// sends idempotent.
func (db *PgSocialRepository) CreateInvitation(roomId, senderId, receiverId int) (Invitation, error) {
	res := db.conn.QueryRow(
		"INSERT INTO invitations (room_id, sender_id, receiver_id, status, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $5) RETURNING "+invitationColumns,
		roomId,
		senderId,
		receiverId,
		InvitationPending,
		time.Now().UTC(),
	)

	inv, err := scanInvitation(res)
	if isUniqueViolation(err) {
		return db.getPendingInvitation(roomId, receiverId)
	}

	return inv, err
}

func (db *PgSocialRepository) getPendingInvitation(roomId, receiverId int) (Invitation, error) {
	row := db.conn.QueryRow(
		"SELECT "+invitationColumns+" FROM invitations "+
			"WHERE room_id = $1 AND receiver_id = $2 AND status = $3 LIMIT 1",
		roomId,
		receiverId,
		InvitationPending,
	)

	return scanInvitation(row)
}

func (db *PgSocialRepository) GetInvitationById(id int) (Invitation, error) {
	row := db.conn.QueryRow(
		"SELECT "+invitationColumns+" FROM invitations WHERE id = $1 LIMIT 1",
		id,
	)

	return scanInvitation(row)
}

func (db *PgSocialRepository) GetAcceptedInvitation(roomId, receiverId int) (Invitation, error) {
	row := db.conn.QueryRow(
		"SELECT "+invitationColumns+" FROM invitations "+
			"WHERE room_id = $1 AND receiver_id = $2 AND status = $3 LIMIT 1",
		roomId,
		receiverId,
		InvitationAccepted,
	)

	return scanInvitation(row)
}

// UpdateInvitationStatus transitions a pending invitation to accepted or
// declined. The status guard in the WHERE clause makes accepted and
// declined terminal: re-responding yields sql.ErrNoRows.
func (db *PgSocialRepository) UpdateInvitationStatus(id int, status string) (Invitation, error) {
	row := db.conn.QueryRow(
		"UPDATE invitations SET status = $2, updated_at = $3 "+
			"WHERE id = $1 AND status = $4 RETURNING "+invitationColumns,
		id,
		status,
		time.Now().UTC(),
		InvitationPending,
	)

	return scanInvitation(row)
}

func (db *PgSocialRepository) ListInvitationsForReceiver(accountId int) ([]Invitation, error) {
	return db.listInvitations("receiver_id", accountId)
}

func (db *PgSocialRepository) ListInvitationsForSender(accountId int) ([]Invitation, error) {
	return db.listInvitations("sender_id", accountId)
}

func (db *PgSocialRepository) listInvitations(column string, accountId int) ([]Invitation, error) {
	rows, err := db.conn.Query(
		"SELECT "+invitationColumns+" FROM invitations WHERE "+column+" = $1 ORDER BY created_at DESC",
		accountId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []Invitation
	for rows.Next() {
		var inv Invitation
		if err := rows.Scan(
			&inv.Id,
			&inv.RoomId,
			&inv.SenderId,
			&inv.ReceiverId,
			&inv.Status,
			&inv.CreatedAt,
			&inv.UpdatedAt,
		); err != nil {
			return nil, err
		}

		invitations = append(invitations, inv)
	}

	return invitations, rows.Err()
}

func scanInvitation(row *sql.Row) (Invitation, error) {
	var inv Invitation
	err := row.Scan(
		&inv.Id,
		&inv.RoomId,
		&inv.SenderId,
		&inv.ReceiverId,
		&inv.Status,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)

	return inv, err
}

// CreateMembership inserts the membership row and bumps the room's
// denormalized member counter in one transaction. The unique index on
// (room_id, user_id) closes the concurrent double-join race.
func (db *PgSocialRepository) CreateMembership(roomId, userId int) (Membership, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return Membership{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res := tx.QueryRow(
		"INSERT INTO memberships (room_id, user_id, is_admin, created_at) "+
			"VALUES ($1, $2, FALSE, $3) RETURNING id, room_id, user_id, is_admin, created_at",
		roomId,
		userId,
		time.Now().UTC(),
	)

	var m Membership
	err = res.Scan(&m.Id, &m.RoomId, &m.UserId, &m.IsAdmin, &m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			err = ErrAlreadyExists
		}
		return Membership{}, err
	}

	_, err = tx.Exec("UPDATE rooms SET total_members = total_members + 1 WHERE id = $1", roomId)
	if err != nil {
		return Membership{}, err
	}

	if err = tx.Commit(); err != nil {
		return Membership{}, err
	}

	return m, nil
}

func (db *PgSocialRepository) GetMembership(roomId, userId int) (Membership, error) {
	row := db.conn.QueryRow(
		"SELECT id, room_id, user_id, is_admin, created_at FROM memberships "+
			"WHERE room_id = $1 AND user_id = $2 LIMIT 1",
		roomId,
		userId,
	)

	var m Membership
	err := row.Scan(&m.Id, &m.RoomId, &m.UserId, &m.IsAdmin, &m.CreatedAt)

	return m, err
}

func (db *PgSocialRepository) DeleteMembership(roomId, userId int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.Exec(
		"DELETE FROM memberships WHERE room_id = $1 AND user_id = $2",
		roomId,
		userId,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = sql.ErrNoRows
		return err
	}

	// total_members never drops below 1, the creator's implicit seat
	_, err = tx.Exec(
		"UPDATE rooms SET total_members = GREATEST(total_members - 1, 1) WHERE id = $1",
		roomId,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (db *PgSocialRepository) ListMembers(roomId int) ([]User, error) {
	rows, err := db.conn.Query(
		"SELECT a.id, a.username FROM memberships AS m "+
			"JOIN accounts AS a ON m.user_id = a.id WHERE m.room_id = $1",
		roomId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members = make([]User, 0)
	for rows.Next() {
		var member User
		if err := rows.Scan(&member.Id, &member.Username); err != nil {
			return nil, err
		}

		members = append(members, member)
	}

	return members, rows.Err()
}

func (db *PgSocialRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	res := db.conn.QueryRow(
		"INSERT INTO messages (room_id, user_id, content, image_url, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, room_id, user_id, content, image_url, created_at",
		params.RoomId,
		params.UserId,
		params.Content,
		params.ImageUrl,
		time.Now().UTC(),
	)

	var msg Message
	err := res.Scan(
		&msg.Id,
		&msg.RoomId,
		&msg.UserId,
		&msg.Content,
		&msg.ImageUrl,
		&msg.CreatedAt,
	)

	return msg, err
}

func (db *PgSocialRepository) GetMessages(roomId, before, limit int) ([]Message, error) {
	var upper = 1<<31 - 1
	if before > 0 {
		upper = before - 1
	}

	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.Query(
		"SELECT m.id, m.room_id, m.user_id, a.username, m.content, m.image_url, m.created_at "+
			"FROM messages m JOIN accounts a ON m.user_id = a.id "+
			"WHERE m.room_id = $1 AND m.id <= $2 ORDER BY m.id DESC LIMIT $3",
		roomId,
		upper,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages = make([]Message, 0, limit)
	for rows.Next() {
		var msg Message
		if err := rows.Scan(
			&msg.Id,
			&msg.RoomId,
			&msg.UserId,
			&msg.Username,
			&msg.Content,
			&msg.ImageUrl,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}

		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func (db *PgSocialRepository) CreateNotification(params CreateNotificationParams) (Notification, error) {
	res := db.conn.QueryRow(
		"INSERT INTO notifications (user_id, type, actor_id, entity_id, entity_type, message, is_read, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7) "+
			"RETURNING id, user_id, type, actor_id, entity_id, entity_type, message, is_read, created_at",
		params.UserId,
		params.Type,
		params.ActorId,
		params.EntityId,
		params.EntityType,
		params.Message,
		time.Now().UTC(),
	)

	var n Notification
	err := res.Scan(
		&n.Id,
		&n.UserId,
		&n.Type,
		&n.ActorId,
		&n.EntityId,
		&n.EntityType,
		&n.Message,
		&n.IsRead,
		&n.CreatedAt,
	)

	return n, err
}

func (db *PgSocialRepository) ListNotifications(accountId, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.Query(
		"SELECT id, user_id, type, actor_id, entity_id, entity_type, message, is_read, created_at "+
			"FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2",
		accountId,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications = make([]Notification, 0, limit)
	for rows.Next() {
		var n Notification
		if err := rows.Scan(
			&n.Id,
			&n.UserId,
			&n.Type,
			&n.ActorId,
			&n.EntityId,
			&n.EntityType,
			&n.Message,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}

		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func (db *PgSocialRepository) UnreadNotificationCount(accountId int) (int, error) {
	row := db.conn.QueryRow(
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE",
		accountId,
	)

	var count int
	err := row.Scan(&count)

	return count, err
}

// MarkNotificationRead is idempotent: re-marking a read notification
// still matches the row and succeeds.
func (db *PgSocialRepository) MarkNotificationRead(id, accountId int) error {
	res, err := db.conn.Exec(
		"UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2",
		id,
		accountId,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (db *PgSocialRepository) MarkAllNotificationsRead(accountId int) error {
	_, err := db.conn.Exec(
		"UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE",
		accountId,
	)

	return err
}

func (db *PgSocialRepository) CreateFollow(followerId, followeeId int) (Follow, error) {
	res := db.conn.QueryRow(
		"INSERT INTO follows (follower_id, followee_id, created_at) "+
			"VALUES ($1, $2, $3) RETURNING id, follower_id, followee_id, created_at",
		followerId,
		followeeId,
		time.Now().UTC(),
	)

	var f Follow
	err := res.Scan(&f.Id, &f.FollowerId, &f.FolloweeId, &f.CreatedAt)
	if isUniqueViolation(err) {
		return db.getFollow(followerId, followeeId)
	}

	return f, err
}

func (db *PgSocialRepository) getFollow(followerId, followeeId int) (Follow, error) {
	row := db.conn.QueryRow(
		"SELECT id, follower_id, followee_id, created_at FROM follows "+
			"WHERE follower_id = $1 AND followee_id = $2 LIMIT 1",
		followerId,
		followeeId,
	)

	var f Follow
	err := row.Scan(&f.Id, &f.FollowerId, &f.FolloweeId, &f.CreatedAt)

	return f, err
}

func (db *PgSocialRepository) DeleteFollow(followerId, followeeId int) error {
	res, err := db.conn.Exec(
		"DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2",
		followerId,
		followeeId,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (db *PgSocialRepository) CreateFriendRequest(senderId, receiverId int) (FriendRequest, error) {
	res := db.conn.QueryRow(
		"INSERT INTO friend_requests (sender_id, receiver_id, status, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING id, sender_id, receiver_id, status, created_at, updated_at",
		senderId,
		receiverId,
		FriendRequestPending,
		time.Now().UTC(),
	)

	fr, err := scanFriendRequest(res)
	if isUniqueViolation(err) {
		return db.getPendingFriendRequest(senderId, receiverId)
	}

	return fr, err
}

func (db *PgSocialRepository) getPendingFriendRequest(senderId, receiverId int) (FriendRequest, error) {
	row := db.conn.QueryRow(
		"SELECT id, sender_id, receiver_id, status, created_at, updated_at FROM friend_requests "+
			"WHERE sender_id = $1 AND receiver_id = $2 AND status = $3 LIMIT 1",
		senderId,
		receiverId,
		FriendRequestPending,
	)

	return scanFriendRequest(row)
}

func (db *PgSocialRepository) GetFriendRequestById(id int) (FriendRequest, error) {
	row := db.conn.QueryRow(
		"SELECT id, sender_id, receiver_id, status, created_at, updated_at FROM friend_requests "+
			"WHERE id = $1 LIMIT 1",
		id,
	)

	return scanFriendRequest(row)
}

func (db *PgSocialRepository) UpdateFriendRequestStatus(id int, status string) (FriendRequest, error) {
	row := db.conn.QueryRow(
		"UPDATE friend_requests SET status = $2, updated_at = $3 "+
			"WHERE id = $1 AND status = $4 RETURNING id, sender_id, receiver_id, status, created_at, updated_at",
		id,
		status,
		time.Now().UTC(),
		FriendRequestPending,
	)

	return scanFriendRequest(row)
}

func scanFriendRequest(row *sql.Row) (FriendRequest, error) {
	var fr FriendRequest
	err := row.Scan(
		&fr.Id,
		&fr.SenderId,
		&fr.ReceiverId,
		&fr.Status,
		&fr.CreatedAt,
		&fr.UpdatedAt,
	)

	return fr, err
}

func (db *PgSocialRepository) RoomRecipientIds(roomId int) ([]int, error) {
	rows, err := db.conn.Query(
		"SELECT owner_id FROM rooms WHERE id = $1 "+
			"UNION "+
			"SELECT user_id FROM memberships WHERE room_id = $1 "+
			"UNION "+
			"SELECT receiver_id FROM invitations WHERE room_id = $1 AND status = $2",
		roomId,
		InvitationAccepted,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}
