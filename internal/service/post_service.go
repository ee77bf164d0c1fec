package service

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/model"
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/minio"
	"Ripple/internal/pkg/util"
	"Ripple/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type PostService interface {
	CreatePost(ctx context.Context, userID uint64, req *dto.CreatePostDTO, image *multipart.FileHeader) (*dto.PostDTO, error)
	GetPost(ctx context.Context, viewerID, postID uint64) (*dto.PostDTO, error)
	GetFeed(ctx context.Context, viewerID uint64, page, limit int) ([]*dto.PostDTO, *dto.PageMeta, error)
	GetUserPosts(ctx context.Context, viewerID, userID uint64, page, limit int) ([]*dto.PostDTO, *dto.PageMeta, error)
	DeletePost(ctx context.Context, userID, postID uint64) error
}

type postServiceImpl struct {
	postRepo   repository.PostRepo
	userRepo   repository.UserRepo
	actionRepo repository.PostActionRepo
}

func NewPostService(
	postRepo repository.PostRepo,
	userRepo repository.UserRepo,
	actionRepo repository.PostActionRepo,
) PostService {
	return &postServiceImpl{
		postRepo:   postRepo,
		userRepo:   userRepo,
		actionRepo: actionRepo,
	}
}

// CreatePost 发帖：正文与配图至少其一
func (s *postServiceImpl) CreatePost(ctx context.Context, userID uint64, req *dto.CreatePostDTO, image *multipart.FileHeader) (*dto.PostDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrParamInvalid
	}
	content := strings.TrimSpace(req.Content)
	if content == "" && image == nil {
		return nil, ErrPostContentEmpty
	}

	post := &model.Post{
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

		objectName := fmt.Sprintf("posts/%d/%s", userID, uuid.NewString())
		upload, err := uploadFile(ctx, objectName, src, image.Size, contentType)
		if err != nil {
			return nil, err
		}
		post.ImageURL = upload.URL
		post.ImageObjectKey = upload.ObjectKey
	}

	if err := s.postRepo.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.IncrPostsCount(ctx, userID, 1); err != nil {
		log.Warn("发帖计数更新失败", "userID", userID, "err", err)
	}

	full, err := s.postRepo.GetPost(ctx, post.ID)
	if err != nil || full == nil {
		full = post
	}
	return s.toPostDTO(full, false), nil
}

func (s *postServiceImpl) GetPost(ctx context.Context, viewerID, postID uint64) (*dto.PostDTO, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	isLiked := false
	if viewerID > 0 {
		like, err := s.actionRepo.GetLike(ctx, viewerID, postID)
		if err == nil {
			isLiked = like != nil
		}
	}
	return s.toPostDTO(post, isLiked), nil
}

// GetFeed 全站时间线
func (s *postServiceImpl) GetFeed(ctx context.Context, viewerID uint64, page, limit int) ([]*dto.PostDTO, *dto.PageMeta, error) {
	posts, err := s.postRepo.GetFeed(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, err
	}
	total, err := s.postRepo.CountPosts(ctx)
	if err != nil {
		return nil, nil, err
	}
	list, err := s.expandPosts(ctx, viewerID, posts)
	if err != nil {
		return nil, nil, err
	}
	return list, newPageMeta(total, page, limit), nil
}

func (s *postServiceImpl) GetUserPosts(ctx context.Context, viewerID, userID uint64, page, limit int) ([]*dto.PostDTO, *dto.PageMeta, error) {
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	posts, err := s.postRepo.GetPostsByUserId(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, err
	}
	total, err := s.postRepo.CountPostsByUserId(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	list, err := s.expandPosts(ctx, viewerID, posts)
	if err != nil {
		return nil, nil, err
	}
	return list, newPageMeta(total, page, limit), nil
}

// DeletePost 删除自己的帖子并清理配图
func (s *postServiceImpl) DeletePost(ctx context.Context, userID, postID uint64) error {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != userID {
		return UnauthorizedError
	}

	rows, err := s.postRepo.DeletePost(ctx, postID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPostNotFound
	}

	if _, err := s.userRepo.IncrPostsCount(ctx, userID, -1); err != nil {
		log.Warn("删帖计数更新失败", "userID", userID, "err", err)
	}

	if post.ImageObjectKey != "" {
		objectKey := post.ImageObjectKey
		go func() {
			if derr := deleteFile(context.Background(), objectKey); derr != nil {
				log.Warn("清理帖子配图失败", "postID", postID, "objectKey", objectKey, "err", derr)
			}
		}()
	}
	return nil
}

func (s *postServiceImpl) expandPosts(ctx context.Context, viewerID uint64, posts []*model.Post) ([]*dto.PostDTO, error) {
	likedMap := make(map[uint64]bool)
	if viewerID > 0 && len(posts) > 0 {
		ids := make([]uint64, 0, len(posts))
		for _, p := range posts {
			ids = append(ids, p.ID)
		}
		likedIDs, err := s.actionRepo.GetLikedPostIds(ctx, viewerID, ids)
		if err != nil {
			return nil, err
		}
		for _, id := range likedIDs {
			likedMap[id] = true
		}
	}

	res := make([]*dto.PostDTO, 0, len(posts))
	for _, p := range posts {
		res = append(res, s.toPostDTO(p, likedMap[p.ID]))
	}
	return res, nil
}

func (s *postServiceImpl) toPostDTO(p *model.Post, isLiked bool) *dto.PostDTO {
	d := &dto.PostDTO{}
	_ = copier.Copy(d, p)
	d.ImageURL = minio.GetPublicURL(p.ImageURL)
	d.IsLiked = isLiked
	d.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	if p.User.ID > 0 {
		d.Username = p.User.Username
		avatar := p.User.AvatarURL
		if avatar == "" {
			avatar = consts.DefaultAvatarURL
		}
		d.AvatarURL = minio.GetPublicURL(avatar)
	}
	return d
}
