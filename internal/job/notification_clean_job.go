package job

import (
	"Ripple/internal/pkg/logger"
	"Ripple/internal/pkg/mongo"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// 已读通知的保留期
const notificationRetention = 90 * 24 * time.Hour

// NotificationCleanJob 定期清理过期的已读通知
type NotificationCleanJob struct {
	notificationRepo mongo.NotificationRepo
}

func NewNotificationCleanJob(notificationRepo mongo.NotificationRepo) *NotificationCleanJob {
	return &NotificationCleanJob{notificationRepo: notificationRepo}
}

func (s *NotificationCleanJob) Run() {
	traceID := "job-notification-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	cutoff := time.Now().Add(-notificationRetention)
	deleted, err := s.notificationRepo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		log.ErrorContext(ctx, "清理过期通知失败", "err", err)
		return
	}
	log.InfoContext(ctx, "过期通知清理完成", "deleted", deleted)
}
