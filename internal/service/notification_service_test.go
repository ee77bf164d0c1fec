package service

import (
	"Ripple/internal/model"
	"Ripple/internal/pkg/mongo"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGetNotificationListExpandsSenders(t *testing.T) {
	repo := &fakeNotificationRepo{}
	userRepo := newFakeUserRepo(&model.User{ID: 3, Username: "carol"})
	svc := NewNotificationService(repo, userRepo)

	_ = repo.Create(context.Background(), &mongo.Notification{
		ID: primitive.NewObjectID(), RecipientID: 9, SenderID: 3,
		Kind: mongo.NotificationKindLike, PostID: 5, CreatedAt: time.Now(),
	})
	_ = repo.Create(context.Background(), &mongo.Notification{
		ID: primitive.NewObjectID(), RecipientID: 9, SenderID: 3,
		Kind: mongo.NotificationKindFollow, IsRead: true, CreatedAt: time.Now(),
	})

	list, meta, err := svc.GetNotificationList(context.Background(), 9, 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "carol", list[0].SenderName)
	assert.Equal(t, uint64(5), list[0].PostID)
	assert.Equal(t, int64(2), meta.Total)
	assert.Equal(t, int64(1), meta.UnreadCount)
}

func TestGetNotificationListUnknownSenderFallsBack(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, newFakeUserRepo())

	_ = repo.Create(context.Background(), &mongo.Notification{
		ID: primitive.NewObjectID(), RecipientID: 9, SenderID: 42,
		Kind: mongo.NotificationKindLike, CreatedAt: time.Now(),
	})

	list, _, err := svc.GetNotificationList(context.Background(), 9, 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].SenderName)
	assert.NotEmpty(t, list[0].AvatarURL, "查无发送者时用默认头像兜底")
}

func TestMarkAllRead(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, newFakeUserRepo())

	_ = repo.Create(context.Background(), &mongo.Notification{RecipientID: 9, SenderID: 1, CreatedAt: time.Now()})
	_ = repo.Create(context.Background(), &mongo.Notification{RecipientID: 9, SenderID: 2, CreatedAt: time.Now()})

	require.NoError(t, svc.MarkAllRead(context.Background(), 9))

	unread, _ := repo.GetUnreadCount(context.Background(), 9)
	assert.Equal(t, int64(0), unread)
}
