package repository

import (
	"Ripple/internal/model"
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type ConversationRepo interface {
	GetConversation(ctx context.Context, id uint64) (*model.Conversation, error)
	GetByPeerKey(ctx context.Context, peerKey string) (*model.Conversation, error)
	GetOrCreate(ctx context.Context, userA, userB uint64) (*model.Conversation, error)
	TouchLastMessage(ctx context.Context, id uint64, messageID string, at time.Time) error
	ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]*model.Conversation, error)
	CountByUser(ctx context.Context, userID uint64) (int64, error)
}

type ConversationRepoImpl struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &ConversationRepoImpl{db: db}
}

func (s *ConversationRepoImpl) GetConversation(ctx context.Context, id uint64) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).First(&conv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

func (s *ConversationRepoImpl) GetByPeerKey(ctx context.Context, peerKey string) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).Where("peer_key = ?", peerKey).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// GetOrCreate 惰性建会话：并发下撞唯一键时回读已有记录
func (s *ConversationRepoImpl) GetOrCreate(ctx context.Context, userA, userB uint64) (*model.Conversation, error) {
	peerKey := model.BuildPeerKey(userA, userB)
	conv, err := s.GetByPeerKey(ctx, peerKey)
	if err != nil || conv != nil {
		return conv, err
	}
	low, high := userA, userB
	if low > high {
		low, high = high, low
	}
	conv = &model.Conversation{
		PeerKey:    peerKey,
		UserLowID:  low,
		UserHighID: high,
	}
	if err := s.db.WithContext(ctx).Create(conv).Error; err != nil {
		if isDuplicateError(err) {
			return s.GetByPeerKey(ctx, peerKey)
		}
		return nil, err
	}
	return conv, nil
}

func (s *ConversationRepoImpl) TouchLastMessage(ctx context.Context, id uint64, messageID string, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_message_id": messageID,
			"last_message_at": at,
		}).Error
}

func (s *ConversationRepoImpl) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]*model.Conversation, error) {
	var convs []*model.Conversation
	err := s.db.WithContext(ctx).
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Order("last_message_at DESC").
		Limit(limit).Offset(offset).
		Find(&convs).Error
	return convs, err
}

func (s *ConversationRepoImpl) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Count(&count).Error
	return count, err
}

// isDuplicateError 判断是否为 MySQL 唯一键冲突（错误码 1062）
func isDuplicateError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
