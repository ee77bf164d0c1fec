package service

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/model"
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/minio"
	"Ripple/internal/pkg/mongo"
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLikeFixture(t *testing.T) (*fakePostActionRepo, *fakePostRepo, *fakeNotifier, PostActionService) {
	t.Helper()
	setupTestRedis(t)
	actionRepo := newFakePostActionRepo()
	postRepo := newFakePostRepo(&model.Post{ID: 10, UserID: 2, LikesCount: 0})
	notifier := &fakeNotifier{}
	svc := NewPostActionService(actionRepo, postRepo, notifier)
	return actionRepo, postRepo, notifier, svc
}

func TestToggleLikeOnAndOff(t *testing.T) {
	mr := setupTestRedis(t)
	actionRepo := newFakePostActionRepo()
	postRepo := newFakePostRepo(&model.Post{ID: 10, UserID: 2})
	notifier := &fakeNotifier{}
	svc := NewPostActionService(actionRepo, postRepo, notifier)

	res, err := svc.ToggleLike(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.True(t, res.IsLiked)
	assert.Equal(t, int64(1), res.LikesCount)
	require.Len(t, notifier.actions, 1)
	assert.Equal(t, mongo.NotificationKindLike, notifier.actions[0].kind)
	assert.Equal(t, uint64(1), notifier.actions[0].actorID)
	assert.Equal(t, uint64(2), notifier.actions[0].ownerID)

	// 帖子被登记到脏计数集合
	members, _ := mr.SMembers(consts.PostCountsDirtyKey)
	assert.Contains(t, members, "10")

	// 再按一次是取消点赞，不产生新通知
	res, err = svc.ToggleLike(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.False(t, res.IsLiked)
	assert.Equal(t, int64(0), res.LikesCount)
	assert.Len(t, notifier.actions, 1)
}

func TestToggleLikeManyActorsConverge(t *testing.T) {
	actionRepo, postRepo, notifier, svc := newLikeFixture(t)

	actors := []uint64{3, 4, 5, 6, 7, 8, 9, 10}
	for _, actor := range actors {
		res, err := svc.ToggleLike(context.Background(), actor, 10)
		require.NoError(t, err)
		assert.True(t, res.IsLiked)
	}

	// N 个不同用户各点一次，计数收敛到 N，每人恰好一条通知
	assert.Equal(t, int64(len(actors)), postRepo.posts[10].LikesCount)
	assert.Len(t, actionRepo.likes, len(actors))
	assert.Len(t, notifier.actions, len(actors))

	for _, actor := range actors {
		res, err := svc.ToggleLike(context.Background(), actor, 10)
		require.NoError(t, err)
		assert.False(t, res.IsLiked)
	}
	assert.Equal(t, int64(0), postRepo.posts[10].LikesCount)
	assert.Empty(t, actionRepo.likes)
}

func TestToggleLikePostNotFound(t *testing.T) {
	_, _, notifier, svc := newLikeFixture(t)

	_, err := svc.ToggleLike(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Empty(t, notifier.actions)
}

func TestToggleLikeDuplicateCreateIsBenign(t *testing.T) {
	actionRepo, postRepo, notifier, svc := newLikeFixture(t)
	actionRepo.createLikeErr = &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	postRepo.posts[10].LikesCount = 1

	res, err := svc.ToggleLike(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.True(t, res.IsLiked)
	// 计数不补增，也不重复通知
	assert.Equal(t, int64(1), res.LikesCount)
	assert.Empty(t, notifier.actions)
}

func TestToggleLikeCompensatesWhenPostVanishes(t *testing.T) {
	actionRepo, postRepo, notifier, svc := newLikeFixture(t)
	// 点赞落库后、计数更新前帖子被删
	actionRepo.afterCreateLike = func() {
		delete(postRepo.posts, 10)
	}

	_, err := svc.ToggleLike(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Empty(t, actionRepo.likes, "补偿应删除悬空的点赞记录")
	assert.Empty(t, notifier.actions)
}

func TestCreateCommentNotifiesAuthor(t *testing.T) {
	actionRepo, postRepo, notifier, svc := newLikeFixture(t)

	res, err := svc.CreateComment(context.Background(), 1, 10, &dto.CommentBaseDTO{Content: "nice"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "nice", res.Content)
	assert.Equal(t, int64(1), postRepo.posts[10].CommentsCount)
	require.Len(t, notifier.actions, 1)
	assert.Equal(t, mongo.NotificationKindComment, notifier.actions[0].kind)
	assert.Equal(t, uint64(10), notifier.actions[0].ref.PostID)
	assert.Equal(t, res.ID, notifier.actions[0].ref.CommentID)
	assert.Len(t, actionRepo.comments, 1)
}

func TestCreateCommentRequiresContentOrImage(t *testing.T) {
	actionRepo, _, notifier, svc := newLikeFixture(t)

	_, err := svc.CreateComment(context.Background(), 1, 10, &dto.CommentBaseDTO{Content: "   "}, nil)
	assert.ErrorIs(t, err, ErrCommentContentEmpty)
	assert.Empty(t, actionRepo.comments)
	assert.Empty(t, notifier.actions)
}

// newImageFileHeader 通过解析真实的 multipart 表单构造文件头
func newImageFileHeader(t *testing.T, filename string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	// 最小 PNG 头，足以被类型嗅探识别
	_, err = part.Write(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestCreateCommentWithImageOnly(t *testing.T) {
	actionRepo, _, notifier, svc := newLikeFixture(t)

	var gotObjectName, gotContentType string
	orig := uploadFile
	uploadFile = func(_ context.Context, objectName string, _ io.Reader, _ int64, contentType string) (*minio.Upload, error) {
		gotObjectName = objectName
		gotContentType = contentType
		return &minio.Upload{
			URL:       "http://minio.test:9000/ripple/" + objectName,
			ObjectKey: objectName,
		}, nil
	}
	t.Cleanup(func() { uploadFile = orig })

	// 只带图不带正文也是合规评论
	res, err := svc.CreateComment(context.Background(), 1, 10, &dto.CommentBaseDTO{}, newImageFileHeader(t, "pic.png"))
	require.NoError(t, err)
	assert.Empty(t, res.Content)
	assert.NotEmpty(t, res.ImageURL)
	assert.Contains(t, gotObjectName, "comments/1/")
	assert.Equal(t, "image/png", gotContentType)

	require.Len(t, actionRepo.comments, 1)
	assert.Equal(t, gotObjectName, actionRepo.comments[res.ID].ImageObjectKey)
	require.Len(t, notifier.actions, 1)
	assert.Equal(t, mongo.NotificationKindComment, notifier.actions[0].kind)
}

func TestCreateCommentCompensatesWhenPostVanishes(t *testing.T) {
	actionRepo, postRepo, _, svc := newLikeFixture(t)
	actionRepo.afterCreateComment = func() {
		delete(postRepo.posts, 10)
	}

	_, err := svc.CreateComment(context.Background(), 1, 10, &dto.CommentBaseDTO{Content: "nice"}, nil)
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Empty(t, actionRepo.comments, "补偿应删除悬空的评论")
}

func TestDeleteCommentOwnerOnly(t *testing.T) {
	actionRepo, postRepo, _, svc := newLikeFixture(t)
	_, err := svc.CreateComment(context.Background(), 1, 10, &dto.CommentBaseDTO{Content: "mine"}, nil)
	require.NoError(t, err)

	err = svc.DeleteComment(context.Background(), 2, 1)
	assert.ErrorIs(t, err, UnauthorizedError)

	err = svc.DeleteComment(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Empty(t, actionRepo.comments)
	assert.Equal(t, int64(0), postRepo.posts[10].CommentsCount)
}

func TestGetLikedPostIdsAnonymous(t *testing.T) {
	_, _, _, svc := newLikeFixture(t)

	liked, err := svc.GetLikedPostIds(context.Background(), 0, []uint64{10})
	require.NoError(t, err)
	assert.Empty(t, liked)
}
