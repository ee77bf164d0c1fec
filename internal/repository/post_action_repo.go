package repository

import (
	"Ripple/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type PostActionRepo interface {
	GetLike(ctx context.Context, userID, postID uint64) (*model.Like, error)
	CreateLike(ctx context.Context, like *model.Like) error
	DeleteLike(ctx context.Context, userID, postID uint64) (int64, error)
	CountLikesByPost(ctx context.Context, postID uint64) (int64, error)

	CreateComment(ctx context.Context, comment *model.PostComment) error
	GetComment(ctx context.Context, id uint64) (*model.PostComment, error)
	DeleteComment(ctx context.Context, id uint64) (int64, error)
	GetCommentsByPostId(ctx context.Context, postID uint64, limit, offset int) ([]*model.PostComment, error)
	CountCommentsByPost(ctx context.Context, postID uint64) (int64, error)

	GetLikedPostIds(ctx context.Context, userID uint64, postIDs []uint64) ([]uint64, error)
}

type PostActionRepoImpl struct {
	db *gorm.DB
}

func NewPostActionRepo(db *gorm.DB) PostActionRepo {
	return &PostActionRepoImpl{db: db}
}

func (s *PostActionRepoImpl) GetLike(ctx context.Context, userID, postID uint64) (*model.Like, error) {
	var like model.Like
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &like, nil
}

// CreateLike 直接插入，唯一键冲突交由上层识别为重复操作
func (s *PostActionRepoImpl) CreateLike(ctx context.Context, like *model.Like) error {
	return s.db.WithContext(ctx).Create(like).Error
}

func (s *PostActionRepoImpl) DeleteLike(ctx context.Context, userID, postID uint64) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.Like{})
	return result.RowsAffected, result.Error
}

func (s *PostActionRepoImpl) CountLikesByPost(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (s *PostActionRepoImpl) CreateComment(ctx context.Context, comment *model.PostComment) error {
	return s.db.WithContext(ctx).Create(comment).Error
}

func (s *PostActionRepoImpl) GetComment(ctx context.Context, id uint64) (*model.PostComment, error) {
	var comment model.PostComment
	err := s.db.WithContext(ctx).First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

func (s *PostActionRepoImpl) DeleteComment(ctx context.Context, id uint64) (int64, error) {
	result := s.db.WithContext(ctx).Delete(&model.PostComment{}, id)
	return result.RowsAffected, result.Error
}

func (s *PostActionRepoImpl) GetCommentsByPostId(ctx context.Context, postID uint64, limit, offset int) ([]*model.PostComment, error) {
	var comments []*model.PostComment
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (s *PostActionRepoImpl) CountCommentsByPost(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.PostComment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

// GetLikedPostIds 批量查出某用户在给定帖子集合里点过赞的帖子 ID
func (s *PostActionRepoImpl) GetLikedPostIds(ctx context.Context, userID uint64, postIDs []uint64) ([]uint64, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	return ids, err
}
