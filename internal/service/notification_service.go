package service

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/minio"
	"Ripple/internal/pkg/mongo"
	"Ripple/internal/repository"
	"context"
	"time"
)

type NotificationService interface {
	GetNotificationList(ctx context.Context, userID uint64, page, limit int) ([]*dto.NotificationDTO, *dto.PageMeta, error)
	MarkAllRead(ctx context.Context, userID uint64) error
}

type notificationServiceImpl struct {
	notificationRepo mongo.NotificationRepo
	userRepo         repository.UserRepo
}

func NewNotificationService(notificationRepo mongo.NotificationRepo, userRepo repository.UserRepo) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
	}
}

// GetNotificationList 获取通知列表并补全发送者信息
func (s *notificationServiceImpl) GetNotificationList(ctx context.Context, userID uint64, page, limit int) ([]*dto.NotificationDTO, *dto.PageMeta, error) {
	list, err := s.notificationRepo.GetList(ctx, userID, int64(limit), int64((page-1)*limit))
	if err != nil {
		return nil, nil, err
	}
	total, err := s.notificationRepo.Count(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	unread, err := s.notificationRepo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	// 批量补全发送者摘要
	senderIDs := make([]uint64, 0, len(list))
	seen := make(map[uint64]struct{}, len(list))
	for _, n := range list {
		if _, ok := seen[n.SenderID]; !ok {
			seen[n.SenderID] = struct{}{}
			senderIDs = append(senderIDs, n.SenderID)
		}
	}
	senders := make(map[uint64]*dto.UserDTO, len(senderIDs))
	if len(senderIDs) > 0 {
		users, err := s.userRepo.GetUserByIds(ctx, senderIDs)
		if err == nil {
			for _, u := range users {
				senders[u.ID] = toUserDTO(u)
			}
		}
	}

	res := make([]*dto.NotificationDTO, 0, len(list))
	for _, n := range list {
		d := &dto.NotificationDTO{
			ID:        n.ID.Hex(),
			Kind:      n.Kind,
			PostID:    n.PostID,
			CommentID: n.CommentID,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
			SenderID:  n.SenderID,
		}
		if sender, ok := senders[n.SenderID]; ok {
			d.SenderName = sender.Username
			d.AvatarURL = sender.AvatarURL
		} else {
			d.AvatarURL = minio.GetPublicURL(consts.DefaultAvatarURL)
		}
		res = append(res, d)
	}

	meta := newPageMeta(total, page, limit)
	meta.UnreadCount = unread
	return res, meta, nil
}

// MarkAllRead 一键已读
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID uint64) error {
	return s.notificationRepo.MarkAllAsRead(ctx, userID)
}
