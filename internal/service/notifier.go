package service

import (
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/kafka"
	"Ripple/internal/pkg/mongo"
	"Ripple/internal/realtime"
	"context"
	log "log/slog"
	"time"
)

// RoomPublisher 实时总线的发布侧抽象
type RoomPublisher interface {
	Publish(ctx context.Context, room string, event string, payload interface{}) error
}

// ActionRef 动作关联的资源
type ActionRef struct {
	PostID    uint64
	CommentID uint64
}

// Notifier 互动通知协调器：一次合规动作产生恰好一条通知
type Notifier interface {
	NotifyOnAction(ctx context.Context, kind string, actorID, ownerID uint64, ref ActionRef) error
}

type notifierImpl struct {
	notificationRepo mongo.NotificationRepo
	hub              RoomPublisher
	producer         *kafka.Producer
}

func NewNotifier(notificationRepo mongo.NotificationRepo, hub RoomPublisher, producer *kafka.Producer) Notifier {
	return &notifierImpl{
		notificationRepo: notificationRepo,
		hub:              hub,
		producer:         producer,
	}
}

// NotifyOnAction 记录互动通知并尝试实时推送。
// 自己对自己的动作在任何写入前直接拦截；落库失败向上返回，推送失败只记日志不回传。
func (s *notifierImpl) NotifyOnAction(ctx context.Context, kind string, actorID, ownerID uint64, ref ActionRef) error {
	if actorID == ownerID {
		return nil
	}

	n := &mongo.Notification{
		RecipientID: ownerID,
		SenderID:    actorID,
		Kind:        kind,
		PostID:      ref.PostID,
		CommentID:   ref.CommentID,
		CreatedAt:   time.Now(),
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		log.Error("通知落库失败", "kind", kind, "actorID", actorID, "ownerID", ownerID, "err", err)
		return err
	}

	if err := s.hub.Publish(ctx, realtime.UserRoom(ownerID), consts.EventNotification, n); err != nil {
		log.Warn("通知推送失败", "kind", kind, "ownerID", ownerID, "err", err)
	}

	s.producer.Emit(&kafka.EngagementEvent{
		Kind:         kind,
		ActorID:      actorID,
		TargetUserID: ownerID,
		PostID:       ref.PostID,
		CommentID:    ref.CommentID,
		OccurredAt:   n.CreatedAt,
	})

	return nil
}
