package service

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/model"
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/minio"
	"Ripple/internal/pkg/mongo"
	"Ripple/internal/pkg/redis"
	"Ripple/internal/pkg/util"
	"Ripple/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type PostActionService interface {
	ToggleLike(ctx context.Context, userID, postID uint64) (*dto.LikeToggleDTO, error)
	IsLiked(ctx context.Context, userID, postID uint64) (bool, error)
	GetLikedPostIds(ctx context.Context, userID uint64, postIDs []uint64) (map[uint64]bool, error)

	CreateComment(ctx context.Context, userID, postID uint64, req *dto.CommentBaseDTO, image *multipart.FileHeader) (*dto.CommentDTO, error)
	DeleteComment(ctx context.Context, userID, commentID uint64) error
	GetCommentsByPostId(ctx context.Context, postID uint64, page, limit int) ([]*dto.CommentDTO, *dto.PageMeta, error)
}

type postActionServiceImpl struct {
	actionRepo repository.PostActionRepo
	postRepo   repository.PostRepo
	notifier   Notifier
}

func NewPostActionService(
	actionRepo repository.PostActionRepo,
	postRepo repository.PostRepo,
	notifier Notifier,
) PostActionService {
	return &postActionServiceImpl{
		actionRepo: actionRepo,
		postRepo:   postRepo,
		notifier:   notifier,
	}
}

// ToggleLike 点赞开关：已赞则取消，未赞则点赞。
// 同一用户对同一帖子至多一条点赞记录，计数增减为单语句原子操作。
func (s *postActionServiceImpl) ToggleLike(ctx context.Context, userID, postID uint64) (*dto.LikeToggleDTO, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	like, err := s.actionRepo.GetLike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if like != nil {
		return s.unlike(ctx, userID, postID)
	}
	return s.like(ctx, userID, post)
}

func (s *postActionServiceImpl) like(ctx context.Context, userID uint64, post *model.Post) (*dto.LikeToggleDTO, error) {
	err := s.actionRepo.CreateLike(ctx, &model.Like{
		UserID:    userID,
		PostID:    post.ID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		// 并发重复点赞视为已生效，不补计数也不发通知
		if isDuplicateError(err) {
			return s.currentLikeState(ctx, post.ID, true)
		}
		return nil, err
	}

	rows, err := s.postRepo.IncrLikesCount(ctx, post.ID, 1)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// 帖子在点赞落库后被删，同步回滚点赞记录
		if _, derr := s.actionRepo.DeleteLike(ctx, userID, post.ID); derr != nil {
			log.Error("点赞补偿回滚失败", "userID", userID, "postID", post.ID, "err", derr)
		}
		return nil, ErrPostNotFound
	}

	s.markDirty(post.ID)

	// 每次合规点赞都产生新通知，取消再点赞不去重
	if err := s.notifier.NotifyOnAction(ctx, mongo.NotificationKindLike, userID, post.UserID, ActionRef{PostID: post.ID}); err != nil {
		return nil, err
	}

	return s.currentLikeState(ctx, post.ID, true)
}

func (s *postActionServiceImpl) unlike(ctx context.Context, userID, postID uint64) (*dto.LikeToggleDTO, error) {
	rows, err := s.actionRepo.DeleteLike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if rows > 0 {
		if _, err := s.postRepo.IncrLikesCount(ctx, postID, -1); err != nil {
			return nil, err
		}
		s.markDirty(postID)
	}
	return s.currentLikeState(ctx, postID, false)
}

func (s *postActionServiceImpl) currentLikeState(ctx context.Context, postID uint64, isLiked bool) (*dto.LikeToggleDTO, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	res := &dto.LikeToggleDTO{IsLiked: isLiked}
	if post != nil {
		res.LikesCount = post.LikesCount
	}
	return res, nil
}

func (s *postActionServiceImpl) IsLiked(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	like, err := s.actionRepo.GetLike(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	return like != nil, nil
}

// GetLikedPostIds 批量判断当前用户对一组帖子的点赞状态
func (s *postActionServiceImpl) GetLikedPostIds(ctx context.Context, userID uint64, postIDs []uint64) (map[uint64]bool, error) {
	likedMap := make(map[uint64]bool, len(postIDs))
	if userID == 0 || len(postIDs) == 0 {
		return likedMap, nil
	}
	ids, err := s.actionRepo.GetLikedPostIds(ctx, userID, postIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		likedMap[id] = true
	}
	return likedMap, nil
}

// CreateComment 发表评论并通知帖子作者，正文与配图至少其一
func (s *postActionServiceImpl) CreateComment(ctx context.Context, userID, postID uint64, req *dto.CommentBaseDTO, image *multipart.FileHeader) (*dto.CommentDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrParamInvalid
	}
	content := strings.TrimSpace(req.Content)
	if content == "" && image == nil {
		return nil, ErrCommentContentEmpty
	}

	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	comment := &model.PostComment{
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now(),
	}

	if image != nil {
		src, err := image.Open()
		if err != nil {
			return nil, ErrFileNotExist
		}
		defer func() {
			_ = src.Close()
		}()

		contentType, err := util.GetSafeContentType(src)
		if err != nil || !strings.HasPrefix(contentType, consts.MimePrefixImage) {
			return nil, ErrFileNotSupported
		}

		objectName := fmt.Sprintf("comments/%d/%s", userID, uuid.NewString())
		upload, err := uploadFile(ctx, objectName, src, image.Size, contentType)
		if err != nil {
			return nil, err
		}
		comment.ImageURL = upload.URL
		comment.ImageObjectKey = upload.ObjectKey
	}

	if err := s.actionRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	rows, err := s.postRepo.IncrCommentsCount(ctx, postID, 1)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// 帖子在评论落库后被删，同步回滚评论记录
		if _, derr := s.actionRepo.DeleteComment(ctx, comment.ID); derr != nil {
			log.Error("评论补偿回滚失败", "commentID", comment.ID, "postID", postID, "err", derr)
		}
		return nil, ErrPostNotFound
	}

	s.markDirty(postID)

	if err := s.notifier.NotifyOnAction(ctx, mongo.NotificationKindComment, userID, post.UserID, ActionRef{PostID: postID, CommentID: comment.ID}); err != nil {
		return nil, err
	}

	full, err := s.actionRepo.GetComment(ctx, comment.ID)
	if err != nil || full == nil {
		full = comment
	}
	return s.toCommentDTO(full), nil
}

func (s *postActionServiceImpl) DeleteComment(ctx context.Context, userID, commentID uint64) error {
	comment, err := s.actionRepo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrPostCommentNotFound
	}
	if comment.UserID != userID {
		return UnauthorizedError
	}

	rows, err := s.actionRepo.DeleteComment(ctx, commentID)
	if err != nil {
		return err
	}
	if rows > 0 {
		if _, err := s.postRepo.IncrCommentsCount(ctx, comment.PostID, -1); err != nil {
			return err
		}
		s.markDirty(comment.PostID)
	}

	if comment.ImageObjectKey != "" {
		objectKey := comment.ImageObjectKey
		go func() {
			if derr := deleteFile(context.Background(), objectKey); derr != nil {
				log.Warn("清理评论配图失败", "commentID", commentID, "objectKey", objectKey, "err", derr)
			}
		}()
	}
	return nil
}

func (s *postActionServiceImpl) GetCommentsByPostId(ctx context.Context, postID uint64, page, limit int) ([]*dto.CommentDTO, *dto.PageMeta, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	if post == nil {
		return nil, nil, ErrPostNotFound
	}

	comments, err := s.actionRepo.GetCommentsByPostId(ctx, postID, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, err
	}
	total, err := s.actionRepo.CountCommentsByPost(ctx, postID)
	if err != nil {
		return nil, nil, err
	}

	res := make([]*dto.CommentDTO, 0, len(comments))
	for _, c := range comments {
		res = append(res, s.toCommentDTO(c))
	}
	meta := newPageMeta(total, page, limit)
	return res, meta, nil
}

func (s *postActionServiceImpl) toCommentDTO(c *model.PostComment) *dto.CommentDTO {
	d := &dto.CommentDTO{}
	_ = copier.Copy(d, c)
	d.ImageURL = minio.GetPublicURL(c.ImageURL)
	d.CreatedAt = c.CreatedAt.Format(time.RFC3339)
	if c.User.ID > 0 {
		d.Username = c.User.Username
		d.AvatarURL = minio.GetPublicURL(c.User.AvatarURL)
	}
	return d
}

// markDirty 登记待对账的帖子，由定时任务重算计数
func (s *postActionServiceImpl) markDirty(postID uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redis.SAdd(ctx, consts.PostCountsDirtyKey, postID); err != nil {
		log.Warn("登记帖子脏计数失败", "postID", postID, "err", err)
	}
}

func isDuplicateError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return false
}
