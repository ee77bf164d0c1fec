package job

import (
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/redis"
	"Ripple/internal/repository"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 只覆盖对账用到的方法，其余走内嵌接口
type stubPostRepo struct {
	repository.PostRepo
	counts map[uint64][2]int64 // postID -> {likes, comments}
}

func (s *stubPostRepo) SetCounts(_ context.Context, id uint64, likes, comments int64) error {
	s.counts[id] = [2]int64{likes, comments}
	return nil
}

type stubActionRepo struct {
	repository.PostActionRepo
	likes    map[uint64]int64
	comments map[uint64]int64
}

func (s *stubActionRepo) CountLikesByPost(_ context.Context, postID uint64) (int64, error) {
	return s.likes[postID], nil
}

func (s *stubActionRepo) CountCommentsByPost(_ context.Context, postID uint64) (int64, error) {
	return s.comments[postID], nil
}

type stubUserRepo struct {
	repository.UserRepo
	updates map[uint64]map[string]interface{}
}

func (s *stubUserRepo) UpdateUser(_ context.Context, id uint64, fields map[string]interface{}) error {
	s.updates[id] = fields
	return nil
}

type stubFollowRepo struct {
	repository.UserFollowRepo
	followers map[uint64]int64
	following map[uint64]int64
}

func (s *stubFollowRepo) CountFollowers(_ context.Context, userID uint64) (int64, error) {
	return s.followers[userID], nil
}

func (s *stubFollowRepo) CountFollowing(_ context.Context, userID uint64) (int64, error) {
	return s.following[userID], nil
}

func setupJobRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	old := redis.Rdb
	redis.Rdb = redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = redis.Rdb.Close()
		redis.Rdb = old
	})
	return mr
}

func TestCounterReconcileRecountsDirtyEntries(t *testing.T) {
	mr := setupJobRedis(t)
	mr.SAdd(consts.PostCountsDirtyKey, "10")
	mr.SAdd(consts.UserCountsDirtyKey, "1", "2")

	postRepo := &stubPostRepo{counts: make(map[uint64][2]int64)}
	actionRepo := &stubActionRepo{
		likes:    map[uint64]int64{10: 3},
		comments: map[uint64]int64{10: 7},
	}
	userRepo := &stubUserRepo{updates: make(map[uint64]map[string]interface{})}
	followRepo := &stubFollowRepo{
		followers: map[uint64]int64{1: 5},
		following: map[uint64]int64{1: 2, 2: 1},
	}

	NewCounterReconcileJob(postRepo, actionRepo, userRepo, followRepo).Run()

	require.Contains(t, postRepo.counts, uint64(10))
	assert.Equal(t, [2]int64{3, 7}, postRepo.counts[10])

	require.Len(t, userRepo.updates, 2)
	assert.Equal(t, int64(5), userRepo.updates[1]["followers_count"])
	assert.Equal(t, int64(2), userRepo.updates[1]["following_count"])
	assert.Equal(t, int64(0), userRepo.updates[2]["followers_count"])

	// 脏集合与处理中集合都被清空
	assert.False(t, mr.Exists(consts.PostCountsDirtyKey))
	assert.False(t, mr.Exists(consts.PostCountsDirtyKey+":processing"))
	assert.False(t, mr.Exists(consts.UserCountsDirtyKey))
}

func TestCounterReconcileNoDirtyEntriesIsNoOp(t *testing.T) {
	setupJobRedis(t)

	postRepo := &stubPostRepo{counts: make(map[uint64][2]int64)}
	userRepo := &stubUserRepo{updates: make(map[uint64]map[string]interface{})}

	job := NewCounterReconcileJob(postRepo, &stubActionRepo{}, userRepo, &stubFollowRepo{})
	job.Run()

	assert.Empty(t, postRepo.counts)
	assert.Empty(t, userRepo.updates)
}
