package service

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/model"
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/es"
	"Ripple/internal/pkg/security"
	"context"
	"sync"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserES struct {
	mu      sync.Mutex
	indexed []*es.UserES
	results []*es.UserES
}

func (f *fakeUserES) IndexUser(_ context.Context, user *es.UserES, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, user)
	return nil
}

func (f *fakeUserES) DeleteUser(_ context.Context, _ uint64) error {
	return nil
}

func (f *fakeUserES) SearchUsers(_ context.Context, _ string, _ int) ([]*es.UserES, error) {
	return f.results, nil
}

func newUserFixture(t *testing.T, users ...*model.User) (*fakeUserRepo, *fakeUserES, UserService) {
	t.Helper()
	setupTestRedis(t)
	userRepo := newFakeUserRepo(users...)
	userES := &fakeUserES{}
	svc := NewUserService(userRepo, newFakeFollowRepo(), userES)
	return userRepo, userES, svc
}

func TestRegisterIssuesToken(t *testing.T) {
	userRepo, _, svc := newUserFixture(t)

	res, err := svc.Register(context.Background(), &dto.RegisterDTO{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "alice", res.User.Username)

	claims, err := security.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	stored, _ := userRepo.GetUserByUsername(context.Background(), "alice")
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret!", stored.Password, "密码必须散列存储")
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	_, _, svc := newUserFixture(t, &model.User{ID: 1, Username: "alice", Email: "alice@example.com"})

	_, err := svc.Register(context.Background(), &dto.RegisterDTO{
		Username: "alice", Email: "other@example.com", Password: "s3cret!",
	})
	assert.ErrorIs(t, err, ErrUserUsernameExist)

	_, err = svc.Register(context.Background(), &dto.RegisterDTO{
		Username: "alice2", Email: "alice@example.com", Password: "s3cret!",
	})
	assert.ErrorIs(t, err, ErrUserEmailExist)
}

func TestRegisterConcurrentDuplicateMapsToConflict(t *testing.T) {
	userRepo, _, svc := newUserFixture(t)
	// 预检查通过后落库撞唯一键，对应并发注册同名账号
	userRepo.createUserErr = &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}

	_, err := svc.Register(context.Background(), &dto.RegisterDTO{
		Username: "alice", Email: "alice@example.com", Password: "s3cret!",
	})
	assert.ErrorIs(t, err, ErrUserExist)
}

func TestLoginByUsernameOrEmail(t *testing.T) {
	hash, err := security.HashPassword("s3cret!")
	require.NoError(t, err)
	_, _, svc := newUserFixture(t, &model.User{ID: 1, Username: "alice", Email: "alice@example.com", Password: hash})

	res, err := svc.Login(context.Background(), &dto.CredentialDTO{Username: "alice", Password: "s3cret!"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	res, err = svc.Login(context.Background(), &dto.CredentialDTO{Email: "alice@example.com", Password: "s3cret!"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Login(context.Background(), &dto.CredentialDTO{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrPasswordIncorrect)

	_, err = svc.Login(context.Background(), &dto.CredentialDTO{Password: "s3cret!"})
	assert.ErrorIs(t, err, ErrMissingLoginCredentials)

	_, err = svc.Login(context.Background(), &dto.CredentialDTO{Username: "nobody", Password: "s3cret!"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogoutDeniesTokenSignature(t *testing.T) {
	mr := setupTestRedis(t)
	svc := NewUserService(newFakeUserRepo(), newFakeFollowRepo(), &fakeUserES{})

	token, err := security.GenerateToken(1, "alice")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), token))

	sig, _ := security.ExtractSignature(token)
	assert.True(t, mr.Exists(consts.AuthDenyKey+sig))

	assert.ErrorIs(t, svc.Logout(context.Background(), "malformed"), UnauthorizedError)
}

func TestGetProfileViewerFollowState(t *testing.T) {
	setupTestRedis(t)
	userRepo := newFakeUserRepo(
		&model.User{ID: 1, Username: "alice"},
		&model.User{ID: 2, Username: "bob"},
	)
	followRepo := newFakeFollowRepo()
	followRepo.follows[followKey{1, 2}] = &model.UserFollow{FollowerID: 1, FolloweeID: 2}
	svc := NewUserService(userRepo, followRepo, &fakeUserES{})

	d, err := svc.GetProfile(context.Background(), 1, "bob")
	require.NoError(t, err)
	assert.True(t, d.IsFollowing)

	d, err = svc.GetProfile(context.Background(), 0, "bob")
	require.NoError(t, err)
	assert.False(t, d.IsFollowing)

	_, err = svc.GetProfile(context.Background(), 1, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSearchUsers(t *testing.T) {
	_, userES, svc := newUserFixture(t)
	userES.results = []*es.UserES{{ID: 7, Username: "carol"}}

	list, err := svc.SearchUsers(context.Background(), "car", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "carol", list[0].Username)
}
