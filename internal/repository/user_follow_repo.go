package repository

import (
	"Ripple/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type UserFollowRepo interface {
	GetUserFollow(ctx context.Context, followerID, followeeID uint64) (*model.UserFollow, error)
	CreateUserFollow(ctx context.Context, follow *model.UserFollow) error
	DeleteUserFollow(ctx context.Context, followerID, followeeID uint64) (int64, error)
	GetFollowerIds(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error)
	GetFollowingIds(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error)
	CountFollowers(ctx context.Context, userID uint64) (int64, error)
	CountFollowing(ctx context.Context, userID uint64) (int64, error)
}

type UserFollowRepoImpl struct {
	db *gorm.DB
}

func NewUserFollowRepo(db *gorm.DB) UserFollowRepo {
	return &UserFollowRepoImpl{db: db}
}

func (s *UserFollowRepoImpl) GetUserFollow(ctx context.Context, followerID, followeeID uint64) (*model.UserFollow, error) {
	var follow model.UserFollow
	err := s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		First(&follow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &follow, nil
}

// CreateUserFollow 直接插入，唯一键冲突交由上层识别为重复操作
func (s *UserFollowRepoImpl) CreateUserFollow(ctx context.Context, follow *model.UserFollow) error {
	return s.db.WithContext(ctx).Create(follow).Error
}

func (s *UserFollowRepoImpl) DeleteUserFollow(ctx context.Context, followerID, followeeID uint64) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.UserFollow{})
	return result.RowsAffected, result.Error
}

func (s *UserFollowRepoImpl) GetFollowerIds(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.UserFollow{}).
		Where("followee_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (s *UserFollowRepoImpl) GetFollowingIds(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.UserFollow{}).
		Where("follower_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Pluck("followee_id", &ids).Error
	return ids, err
}

func (s *UserFollowRepoImpl) CountFollowers(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.UserFollow{}).
		Where("followee_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (s *UserFollowRepoImpl) CountFollowing(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.UserFollow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	return count, err
}
