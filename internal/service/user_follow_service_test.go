package service

import (
	"Ripple/internal/model"
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/mongo"
	"context"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFollowFixture(t *testing.T) (*fakeFollowRepo, *fakeUserRepo, *fakeNotifier, UserFollowService) {
	t.Helper()
	setupTestRedis(t)
	followRepo := newFakeFollowRepo()
	userRepo := newFakeUserRepo(
		&model.User{ID: 1, Username: "alice"},
		&model.User{ID: 2, Username: "bob"},
	)
	notifier := &fakeNotifier{}
	svc := NewUserFollowService(followRepo, userRepo, notifier)
	return followRepo, userRepo, notifier, svc
}

func TestToggleFollowSelfRejectedBeforeAnyWrite(t *testing.T) {
	followRepo, userRepo, notifier, svc := newFollowFixture(t)

	_, err := svc.ToggleFollow(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrUserFollowSelf)
	assert.Empty(t, followRepo.follows)
	assert.Equal(t, int64(0), userRepo.users[1].FollowersCount)
	assert.Empty(t, notifier.actions)
}

func TestToggleFollowOnAndOff(t *testing.T) {
	mr := setupTestRedis(t)
	followRepo := newFakeFollowRepo()
	userRepo := newFakeUserRepo(
		&model.User{ID: 1, Username: "alice"},
		&model.User{ID: 2, Username: "bob"},
	)
	notifier := &fakeNotifier{}
	svc := NewUserFollowService(followRepo, userRepo, notifier)

	res, err := svc.ToggleFollow(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, res.IsFollowing)
	assert.Equal(t, int64(1), res.FollowersCount)
	assert.Equal(t, int64(1), userRepo.users[1].FollowingCount)
	require.Len(t, notifier.actions, 1)
	assert.Equal(t, mongo.NotificationKindFollow, notifier.actions[0].kind)
	assert.Equal(t, uint64(2), notifier.actions[0].ownerID)

	// 关注双方都被登记到脏计数集合
	members, _ := mr.SMembers(consts.UserCountsDirtyKey)
	assert.ElementsMatch(t, []string{"1", "2"}, members)

	// 再按一次是取关，不产生新通知
	res, err = svc.ToggleFollow(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, res.IsFollowing)
	assert.Equal(t, int64(0), res.FollowersCount)
	assert.Equal(t, int64(0), userRepo.users[1].FollowingCount)
	assert.Len(t, notifier.actions, 1)
}

func TestToggleFollowUnknownFollowee(t *testing.T) {
	_, _, notifier, svc := newFollowFixture(t)

	_, err := svc.ToggleFollow(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, notifier.actions)
}

func TestToggleFollowDuplicateCreateIsBenign(t *testing.T) {
	followRepo, userRepo, notifier, svc := newFollowFixture(t)
	followRepo.createErr = &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	userRepo.users[2].FollowersCount = 1

	res, err := svc.ToggleFollow(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, res.IsFollowing)
	assert.Equal(t, int64(1), res.FollowersCount)
	assert.Empty(t, notifier.actions)
}

func TestToggleFollowCompensatesWhenFolloweeVanishes(t *testing.T) {
	followRepo, userRepo, notifier, svc := newFollowFixture(t)
	// 关注落库后、计数更新前被关注者注销
	followRepo.afterCreate = func() {
		delete(userRepo.users, 2)
	}

	_, err := svc.ToggleFollow(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, followRepo.follows, "补偿应删除悬空的关注记录")
	assert.Equal(t, int64(0), userRepo.users[1].FollowingCount)
	assert.Empty(t, notifier.actions)
}

func TestIsFollowingAnonymous(t *testing.T) {
	_, _, _, svc := newFollowFixture(t)

	following, err := svc.IsFollowing(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.False(t, following)
}
