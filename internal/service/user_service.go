package service

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/model"
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/es"
	"Ripple/internal/pkg/minio"
	"Ripple/internal/pkg/redis"
	"Ripple/internal/pkg/security"
	"Ripple/internal/pkg/util"
	"Ripple/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
)

type UserService interface {
	Register(ctx context.Context, req *dto.RegisterDTO) (*dto.AuthDTO, error)
	Login(ctx context.Context, req *dto.CredentialDTO) (*dto.AuthDTO, error)
	Logout(ctx context.Context, token string) error
	GetProfile(ctx context.Context, viewerID uint64, username string) (*dto.UserDTO, error)
	UpdateProfile(ctx context.Context, userID uint64, req *dto.UpdateProfileDTO) (*dto.UserDTO, error)
	UploadAvatar(ctx context.Context, userID uint64, file *multipart.FileHeader) (*dto.AvatarDTO, error)
	DeleteAvatar(ctx context.Context, userID uint64) error
	SearchUsers(ctx context.Context, keyword string, limit int) ([]*dto.UserDTO, error)
}

type userServiceImpl struct {
	userRepo   repository.UserRepo
	followRepo repository.UserFollowRepo
	userES     es.UserRepo
}

func NewUserService(
	userRepo repository.UserRepo,
	followRepo repository.UserFollowRepo,
	userES es.UserRepo,
) UserService {
	return &userServiceImpl{
		userRepo:   userRepo,
		followRepo: followRepo,
		userES:     userES,
	}
}

// Register 注册并直接签发登录态
func (s *userServiceImpl) Register(ctx context.Context, req *dto.RegisterDTO) (*dto.AuthDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrParamInvalid
	}

	existing, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserUsernameExist
	}
	existing, err = s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserEmailExist
	}

	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		FullName: req.FullName,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		// 并发注册绕过预检查时，唯一键冲突按已存在处理
		if isDuplicateError(err) {
			return nil, ErrUserExist
		}
		return nil, err
	}

	s.syncToSearchIndex(user)

	token, err := security.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &dto.AuthDTO{Token: token, User: toUserDTO(user)}, nil
}

// Login 用户名或邮箱登录
func (s *userServiceImpl) Login(ctx context.Context, req *dto.CredentialDTO) (*dto.AuthDTO, error) {
	var user *model.User
	var err error
	switch {
	case req.Username != "":
		user, err = s.userRepo.GetUserByUsername(ctx, req.Username)
	case req.Email != "":
		user, err = s.userRepo.GetUserByEmail(ctx, req.Email)
	default:
		return nil, ErrMissingLoginCredentials
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := security.CheckPasswordHash(req.Password, user.Password); err != nil {
		return nil, ErrPasswordIncorrect
	}

	token, err := security.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &dto.AuthDTO{Token: token, User: toUserDTO(user)}, nil
}

// Logout 将令牌签名写入拒绝名单，余下有效期内不再接受
func (s *userServiceImpl) Logout(ctx context.Context, token string) error {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return UnauthorizedError
	}
	return redis.SetWithExpiration(ctx, consts.AuthDenyKey+signature, "1", security.JWTExpirationTime)
}

func (s *userServiceImpl) GetProfile(ctx context.Context, viewerID uint64, username string) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	d := toUserDTO(user)
	if viewerID > 0 && viewerID != user.ID {
		follow, err := s.followRepo.GetUserFollow(ctx, viewerID, user.ID)
		if err == nil {
			d.IsFollowing = follow != nil
		}
	}
	return d, nil
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID uint64, req *dto.UpdateProfileDTO) (*dto.UserDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrParamInvalid
	}

	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	fields := make(map[string]interface{})
	if req.FullName != nil {
		fields["full_name"] = *req.FullName
	}
	if req.Website != nil {
		fields["website"] = *req.Website
	}
	if req.About != nil {
		fields["about"] = *req.About
	}
	if len(fields) > 0 {
		if err := s.userRepo.UpdateUser(ctx, userID, fields); err != nil {
			return nil, err
		}
		user, err = s.userRepo.GetUserById(ctx, userID)
		if err != nil || user == nil {
			return nil, ErrUserNotFound
		}
		s.syncToSearchIndex(user)
	}
	return toUserDTO(user), nil
}

// UploadAvatar 上传头像并替换旧文件
func (s *userServiceImpl) UploadAvatar(ctx context.Context, userID uint64, file *multipart.FileHeader) (*dto.AvatarDTO, error) {
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	src, err := file.Open()
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

	objectName := fmt.Sprintf("avatars/%d/%s", userID, uuid.NewString())
	upload, err := uploadFile(ctx, objectName, src, file.Size, contentType)
	if err != nil {
		return nil, err
	}

	oldObjectKey := user.AvatarObjectKey

	err = s.userRepo.UpdateUser(ctx, userID, map[string]interface{}{
		"avatar_url":        upload.URL,
		"avatar_object_key": upload.ObjectKey,
	})
	if err != nil {
		return nil, err
	}

	if oldObjectKey != "" {
		go func() {
			if derr := deleteFile(context.Background(), oldObjectKey); derr != nil {
				log.Warn("清理旧头像失败", "userID", userID, "objectKey", oldObjectKey, "err", derr)
			}
		}()
	}

	user.AvatarURL = upload.URL
	s.syncToSearchIndex(user)

	return &dto.AvatarDTO{AvatarURL: minio.GetPublicURL(upload.URL)}, nil
}

// DeleteAvatar 移除头像，回落默认图
func (s *userServiceImpl) DeleteAvatar(ctx context.Context, userID uint64) error {
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.AvatarObjectKey == "" {
		return nil
	}

	err = s.userRepo.UpdateUser(ctx, userID, map[string]interface{}{
		"avatar_url":        "",
		"avatar_object_key": "",
	})
	if err != nil {
		return err
	}

	objectKey := user.AvatarObjectKey
	go func() {
		if derr := deleteFile(context.Background(), objectKey); derr != nil {
			log.Warn("清理头像失败", "userID", userID, "objectKey", objectKey, "err", derr)
		}
	}()

	user.AvatarURL = ""
	s.syncToSearchIndex(user)
	return nil
}

// SearchUsers 全文搜索用户
func (s *userServiceImpl) SearchUsers(ctx context.Context, keyword string, limit int) ([]*dto.UserDTO, error) {
	hits, err := s.userES.SearchUsers(ctx, keyword, limit)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.UserDTO, 0, len(hits))
	for _, h := range hits {
		res = append(res, &dto.UserDTO{
			ID:             h.ID,
			Username:       h.Username,
			FullName:       h.FullName,
			About:          h.About,
			AvatarURL:      minio.GetPublicURL(h.AvatarURL),
			FollowersCount: h.FollowersCount,
		})
	}
	return res, nil
}

// syncToSearchIndex 以更新时间为外部版本写入搜索索引，旧数据自动跳过
func (s *userServiceImpl) syncToSearchIndex(user *model.User) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		doc := &es.UserES{
			ID:             user.ID,
			Username:       user.Username,
			FullName:       user.FullName,
			About:          user.About,
			AvatarURL:      user.AvatarURL,
			FollowersCount: user.FollowersCount,
		}
		if err := s.userES.IndexUser(ctx, doc, time.Now().UnixMilli()); err != nil {
			log.Warn("同步用户搜索索引失败", "userID", user.ID, "err", err)
		}
	}()
}

func toUserDTO(u *model.User) *dto.UserDTO {
	avatar := u.AvatarURL
	if avatar == "" {
		avatar = consts.DefaultAvatarURL
	}
	return &dto.UserDTO{
		ID:             u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		Website:        u.Website,
		About:          u.About,
		AvatarURL:      minio.GetPublicURL(avatar),
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
		PostsCount:     u.PostsCount,
		CreatedAt:      u.CreatedAt.Format(time.RFC3339),
	}
}
