package notification

import (
	"errors"
	"testing"

	"github.com/acrispino/socialchat/internal/database"
	"github.com/acrispino/socialchat/internal/testutil"
	"github.com/stretchr/testify/assert"
)

type fakeRefresher struct {
	calls [][]int
}

func (f *fakeRefresher) RefreshNotifications(userIds []int) {
	f.calls = append(f.calls, userIds)
}

func TestNotify(t *testing.T) {
	db := &database.MockSocialRepository{}
	defer db.AssertExpectations(t)

	params := database.CreateNotificationParams{
		Type:       TypeMessage,
		ActorId:    1,
		EntityId:   7,
		EntityType: "room",
		Message:    "alice sent a message",
	}

	for _, userId := range []int{2, 3} {
		p := params
		p.UserId = userId
		db.On("CreateNotification", p).Return(database.Notification{Id: userId, UserId: userId}, nil)
	}

	refresher := &fakeRefresher{}
	n := NewNotifier(testutil.TestLogger(t), db, refresher)
	n.Notify([]int{2, 3}, params)

	assert.Equal(t, [][]int{{2, 3}}, refresher.calls, "expected one refresh signal covering both recipients")
}

func TestNotifyIsolatesRecipientFailures(t *testing.T) {
	db := &database.MockSocialRepository{}
	defer db.AssertExpectations(t)

	params := database.CreateNotificationParams{Type: TypeRoomJoin, Message: "bob joined"}

	failing := params
	failing.UserId = 2
	db.On("CreateNotification", failing).Return(database.Notification{}, errors.New("insert failed"))

	ok := params
	ok.UserId = 3
	db.On("CreateNotification", ok).Return(database.Notification{Id: 1, UserId: 3}, nil)

	refresher := &fakeRefresher{}
	n := NewNotifier(testutil.TestLogger(t), db, refresher)
	n.Notify([]int{2, 3}, params)

	assert.Equal(t, [][]int{{3}}, refresher.calls, "expected refresh only for the recipient whose row was written")
}

func TestNotifyNoRecipients(t *testing.T) {
	db := &database.MockSocialRepository{}
	defer db.AssertExpectations(t)

	refresher := &fakeRefresher{}
	n := NewNotifier(testutil.TestLogger(t), db, refresher)
	n.Notify(nil, database.CreateNotificationParams{Type: TypeFollow})

	assert.Empty(t, refresher.calls, "expected no refresh signal without recipients")
}
