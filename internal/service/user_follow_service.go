package service

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/model"
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/mongo"
	"Ripple/internal/pkg/redis"
	"Ripple/internal/repository"
	"context"
	log "log/slog"
	"time"
)

type UserFollowService interface {
	ToggleFollow(ctx context.Context, followerID, followeeID uint64) (*dto.FollowToggleDTO, error)
	IsFollowing(ctx context.Context, followerID, followeeID uint64) (bool, error)
	GetFollowers(ctx context.Context, userID uint64, page, limit int) ([]*dto.UserDTO, *dto.PageMeta, error)
	GetFollowing(ctx context.Context, userID uint64, page, limit int) ([]*dto.UserDTO, *dto.PageMeta, error)
}

type userFollowServiceImpl struct {
	followRepo repository.UserFollowRepo
	userRepo   repository.UserRepo
	notifier   Notifier
}

func NewUserFollowService(
	followRepo repository.UserFollowRepo,
	userRepo repository.UserRepo,
	notifier Notifier,
) UserFollowService {
	return &userFollowServiceImpl{
		followRepo: followRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

// ToggleFollow 关注开关：已关注则取关，未关注则关注。
// 自关注在任何写入前拒绝。
func (s *userFollowServiceImpl) ToggleFollow(ctx context.Context, followerID, followeeID uint64) (*dto.FollowToggleDTO, error) {
	if followerID == followeeID {
		return nil, ErrUserFollowSelf
	}

	followee, err := s.userRepo.GetUserById(ctx, followeeID)
	if err != nil {
		return nil, err
	}
	if followee == nil {
		return nil, ErrUserNotFound
	}

	follow, err := s.followRepo.GetUserFollow(ctx, followerID, followeeID)
	if err != nil {
		return nil, err
	}

	if follow != nil {
		return s.unfollow(ctx, followerID, followeeID)
	}
	return s.follow(ctx, followerID, followeeID)
}

func (s *userFollowServiceImpl) follow(ctx context.Context, followerID, followeeID uint64) (*dto.FollowToggleDTO, error) {
	err := s.followRepo.CreateUserFollow(ctx, &model.UserFollow{
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		// 并发重复关注视为已生效，不补计数也不发通知
		if isDuplicateError(err) {
			return s.currentFollowState(ctx, followeeID, true)
		}
		return nil, err
	}

	rows, err := s.userRepo.IncrFollowersCount(ctx, followeeID, 1)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// 被关注者在落库后被删，同步回滚关注记录
		if _, derr := s.followRepo.DeleteUserFollow(ctx, followerID, followeeID); derr != nil {
			log.Error("关注补偿回滚失败", "followerID", followerID, "followeeID", followeeID, "err", derr)
		}
		return nil, ErrUserNotFound
	}
	if _, err := s.userRepo.IncrFollowingCount(ctx, followerID, 1); err != nil {
		return nil, err
	}

	s.markDirty(followerID, followeeID)

	if err := s.notifier.NotifyOnAction(ctx, mongo.NotificationKindFollow, followerID, followeeID, ActionRef{}); err != nil {
		return nil, err
	}

	return s.currentFollowState(ctx, followeeID, true)
}

func (s *userFollowServiceImpl) unfollow(ctx context.Context, followerID, followeeID uint64) (*dto.FollowToggleDTO, error) {
	rows, err := s.followRepo.DeleteUserFollow(ctx, followerID, followeeID)
	if err != nil {
		return nil, err
	}
	if rows > 0 {
		if _, err := s.userRepo.IncrFollowersCount(ctx, followeeID, -1); err != nil {
			return nil, err
		}
		if _, err := s.userRepo.IncrFollowingCount(ctx, followerID, -1); err != nil {
			return nil, err
		}
		s.markDirty(followerID, followeeID)
	}
	return s.currentFollowState(ctx, followeeID, false)
}

func (s *userFollowServiceImpl) currentFollowState(ctx context.Context, followeeID uint64, isFollowing bool) (*dto.FollowToggleDTO, error) {
	followee, err := s.userRepo.GetUserById(ctx, followeeID)
	if err != nil {
		return nil, err
	}
	res := &dto.FollowToggleDTO{IsFollowing: isFollowing}
	if followee != nil {
		res.FollowersCount = followee.FollowersCount
	}
	return res, nil
}

func (s *userFollowServiceImpl) IsFollowing(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	if followerID == 0 {
		return false, nil
	}
	follow, err := s.followRepo.GetUserFollow(ctx, followerID, followeeID)
	if err != nil {
		return false, err
	}
	return follow != nil, nil
}

func (s *userFollowServiceImpl) GetFollowers(ctx context.Context, userID uint64, page, limit int) ([]*dto.UserDTO, *dto.PageMeta, error) {
	ids, err := s.followRepo.GetFollowerIds(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, err
	}
	total, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	list, err := s.expandUsers(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return list, newPageMeta(total, page, limit), nil
}

func (s *userFollowServiceImpl) GetFollowing(ctx context.Context, userID uint64, page, limit int) ([]*dto.UserDTO, *dto.PageMeta, error) {
	ids, err := s.followRepo.GetFollowingIds(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, err
	}
	total, err := s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	list, err := s.expandUsers(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return list, newPageMeta(total, page, limit), nil
}

// expandUsers 按给定顺序展开用户摘要
func (s *userFollowServiceImpl) expandUsers(ctx context.Context, ids []uint64) ([]*dto.UserDTO, error) {
	if len(ids) == 0 {
		return []*dto.UserDTO{}, nil
	}
	users, err := s.userRepo.GetUserByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	res := make([]*dto.UserDTO, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			continue
		}
		res = append(res, toUserDTO(u))
	}
	return res, nil
}

// markDirty 登记待对账的用户，由定时任务重算关注计数
func (s *userFollowServiceImpl) markDirty(userIDs ...uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, id := range userIDs {
		if err := redis.SAdd(ctx, consts.UserCountsDirtyKey, id); err != nil {
			log.Warn("登记用户脏计数失败", "userID", id, "err", err)
		}
	}
}
