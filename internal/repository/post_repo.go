package repository

import (
	"Ripple/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type PostRepo interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id uint64) (*model.Post, error)
	GetFeed(ctx context.Context, limit, offset int) ([]*model.Post, error)
	GetPostsByUserId(ctx context.Context, userID uint64, limit, offset int) ([]*model.Post, error)
	CountPosts(ctx context.Context) (int64, error)
	CountPostsByUserId(ctx context.Context, userID uint64) (int64, error)
	DeletePost(ctx context.Context, id uint64) (int64, error)
	IncrLikesCount(ctx context.Context, id uint64, delta int) (int64, error)
	IncrCommentsCount(ctx context.Context, id uint64, delta int) (int64, error)
	SetCounts(ctx context.Context, id uint64, likes, comments int64) error
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) PostRepo {
	return &PostRepoImpl{db: db}
}

func (s *PostRepoImpl) CreatePost(ctx context.Context, post *model.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

func (s *PostRepoImpl) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).Preload("User").First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetFeed 按发布时间倒序分页拉取帖子流
func (s *PostRepoImpl) GetFeed(ctx context.Context, limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (s *PostRepoImpl) GetPostsByUserId(ctx context.Context, userID uint64, limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (s *PostRepoImpl) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Post{}).Count(&count).Error
	return count, err
}

func (s *PostRepoImpl) CountPostsByUserId(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Post{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (s *PostRepoImpl) DeletePost(ctx context.Context, id uint64) (int64, error) {
	result := s.db.WithContext(ctx).Delete(&model.Post{}, id)
	return result.RowsAffected, result.Error
}

// IncrLikesCount 原子增减点赞数，下限为 0，返回命中行数
func (s *PostRepoImpl) IncrLikesCount(ctx context.Context, id uint64, delta int) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Update("likes_count", gorm.Expr("GREATEST(likes_count + ?, 0)", delta))
	return result.RowsAffected, result.Error
}

// IncrCommentsCount 原子增减评论数，下限为 0，返回命中行数
func (s *PostRepoImpl) IncrCommentsCount(ctx context.Context, id uint64, delta int) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Update("comments_count", gorm.Expr("GREATEST(comments_count + ?, 0)", delta))
	return result.RowsAffected, result.Error
}

// SetCounts 对账任务用：以重算出的真值覆盖冗余计数
func (s *PostRepoImpl) SetCounts(ctx context.Context, id uint64, likes, comments int64) error {
	return s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"likes_count":    likes,
			"comments_count": comments,
		}).Error
}
