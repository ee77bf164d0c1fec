package job

import (
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/logger"
	"Ripple/internal/pkg/redis"
	"Ripple/internal/pkg/util"
	"Ripple/internal/repository"
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// CounterReconcileJob 以真值重算修复帖子与用户上的冗余计数
type CounterReconcileJob struct {
	postRepo   repository.PostRepo
	actionRepo repository.PostActionRepo
	userRepo   repository.UserRepo
	followRepo repository.UserFollowRepo
}

func NewCounterReconcileJob(
	postRepo repository.PostRepo,
	actionRepo repository.PostActionRepo,
	userRepo repository.UserRepo,
	followRepo repository.UserFollowRepo,
) *CounterReconcileJob {
	return &CounterReconcileJob{
		postRepo:   postRepo,
		actionRepo: actionRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

func (s *CounterReconcileJob) Run() {
	traceID := "job-counter-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	s.reconcilePosts(ctx)
	s.reconcileUsers(ctx)
}

func (s *CounterReconcileJob) reconcilePosts(ctx context.Context) {
	ids, ok := s.drainDirtySet(ctx, consts.PostCountsDirtyKey)
	if !ok {
		return
	}

	for _, pid := range ids {
		likes, err := s.actionRepo.CountLikesByPost(ctx, pid)
		if err != nil {
			log.ErrorContext(ctx, "重算帖子点赞数失败", "pid", pid, "err", err)
			continue
		}
		comments, err := s.actionRepo.CountCommentsByPost(ctx, pid)
		if err != nil {
			log.ErrorContext(ctx, "重算帖子评论数失败", "pid", pid, "err", err)
			continue
		}
		if err := s.postRepo.SetCounts(ctx, pid, likes, comments); err != nil {
			log.ErrorContext(ctx, "回写帖子计数失败", "pid", pid, "err", err)
		}
	}

	log.InfoContext(ctx, "帖子计数对账完成", "post_count", len(ids))
}

func (s *CounterReconcileJob) reconcileUsers(ctx context.Context) {
	ids, ok := s.drainDirtySet(ctx, consts.UserCountsDirtyKey)
	if !ok {
		return
	}

	for _, uid := range ids {
		followers, err := s.followRepo.CountFollowers(ctx, uid)
		if err != nil {
			log.ErrorContext(ctx, "重算粉丝数失败", "uid", uid, "err", err)
			continue
		}
		following, err := s.followRepo.CountFollowing(ctx, uid)
		if err != nil {
			log.ErrorContext(ctx, "重算关注数失败", "uid", uid, "err", err)
			continue
		}
		err = s.userRepo.UpdateUser(ctx, uid, map[string]interface{}{
			"followers_count": followers,
			"following_count": following,
		})
		if err != nil {
			log.ErrorContext(ctx, "回写用户计数失败", "uid", uid, "err", err)
		}
	}

	log.InfoContext(ctx, "用户计数对账完成", "user_count", len(ids))
}

// drainDirtySet 原子接管脏集合，避免与在途写入互相覆盖
func (s *CounterReconcileJob) drainDirtySet(ctx context.Context, dirtyKey string) ([]uint64, bool) {
	processingKey := dirtyKey + ":processing"
	if err := redis.Rename(ctx, dirtyKey, processingKey); err != nil {
		return nil, false
	}

	members, err := redis.GetSet(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "读取脏集合失败", "key", processingKey, "err", err)
		return nil, false
	}

	ids, err := util.StrSliceToUInt64Slice(members)
	if err != nil {
		log.ErrorContext(ctx, "脏集合成员解析失败", "key", processingKey, "err", err)
		return nil, false
	}

	if err := redis.DeleteKey(ctx, processingKey); err != nil {
		log.ErrorContext(ctx, "清理处理中集合失败", "key", processingKey, "err", err)
	}
	return ids, true
}
