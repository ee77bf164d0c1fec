package service

import (
	"Ripple/internal/api/config"
	"Ripple/internal/model"
	"Ripple/internal/pkg/mongo"
	"Ripple/internal/pkg/redis"
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	config.Cfg = &config.Config{
		MinIO: config.MinIOConfig{Endpoint: "minio.test:9000"},
	}
	os.Exit(m.Run())
}

// setupTestRedis 用内存版 Redis 接管全局客户端
func setupTestRedis(t *testing.T) *miniredis.Miniredis {
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

type likeKey struct {
	userID uint64
	postID uint64
}

type fakePostActionRepo struct {
	likes    map[likeKey]*model.Like
	comments map[uint64]*model.PostComment
	nextID   uint64

	createLikeErr      error
	afterCreateLike    func()
	afterCreateComment func()
}

func newFakePostActionRepo() *fakePostActionRepo {
	return &fakePostActionRepo{
		likes:    make(map[likeKey]*model.Like),
		comments: make(map[uint64]*model.PostComment),
	}
}

func (f *fakePostActionRepo) GetLike(_ context.Context, userID, postID uint64) (*model.Like, error) {
	return f.likes[likeKey{userID, postID}], nil
}

func (f *fakePostActionRepo) CreateLike(_ context.Context, like *model.Like) error {
	if f.createLikeErr != nil {
		return f.createLikeErr
	}
	f.likes[likeKey{like.UserID, like.PostID}] = like
	if f.afterCreateLike != nil {
		f.afterCreateLike()
	}
	return nil
}

func (f *fakePostActionRepo) DeleteLike(_ context.Context, userID, postID uint64) (int64, error) {
	k := likeKey{userID, postID}
	if _, ok := f.likes[k]; !ok {
		return 0, nil
	}
	delete(f.likes, k)
	return 1, nil
}

func (f *fakePostActionRepo) CountLikesByPost(_ context.Context, postID uint64) (int64, error) {
	var count int64
	for k := range f.likes {
		if k.postID == postID {
			count++
		}
	}
	return count, nil
}

func (f *fakePostActionRepo) CreateComment(_ context.Context, comment *model.PostComment) error {
	f.nextID++
	comment.ID = f.nextID
	f.comments[comment.ID] = comment
	if f.afterCreateComment != nil {
		f.afterCreateComment()
	}
	return nil
}

func (f *fakePostActionRepo) GetComment(_ context.Context, id uint64) (*model.PostComment, error) {
	return f.comments[id], nil
}

func (f *fakePostActionRepo) DeleteComment(_ context.Context, id uint64) (int64, error) {
	if _, ok := f.comments[id]; !ok {
		return 0, nil
	}
	delete(f.comments, id)
	return 1, nil
}

func (f *fakePostActionRepo) GetCommentsByPostId(_ context.Context, postID uint64, limit, offset int) ([]*model.PostComment, error) {
	var res []*model.PostComment
	for _, c := range f.comments {
		if c.PostID == postID {
			res = append(res, c)
		}
	}
	return res, nil
}

func (f *fakePostActionRepo) CountCommentsByPost(_ context.Context, postID uint64) (int64, error) {
	var count int64
	for _, c := range f.comments {
		if c.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (f *fakePostActionRepo) GetLikedPostIds(_ context.Context, userID uint64, postIDs []uint64) ([]uint64, error) {
	var res []uint64
	for _, pid := range postIDs {
		if _, ok := f.likes[likeKey{userID, pid}]; ok {
			res = append(res, pid)
		}
	}
	return res, nil
}

type fakePostRepo struct {
	posts map[uint64]*model.Post
}

func newFakePostRepo(posts ...*model.Post) *fakePostRepo {
	f := &fakePostRepo{posts: make(map[uint64]*model.Post)}
	for _, p := range posts {
		f.posts[p.ID] = p
	}
	return f
}

func (f *fakePostRepo) CreatePost(_ context.Context, post *model.Post) error {
	f.posts[post.ID] = post
	return nil
}

func (f *fakePostRepo) GetPost(_ context.Context, id uint64) (*model.Post, error) {
	return f.posts[id], nil
}

func (f *fakePostRepo) GetFeed(_ context.Context, limit, offset int) ([]*model.Post, error) {
	var res []*model.Post
	for _, p := range f.posts {
		res = append(res, p)
	}
	return res, nil
}

func (f *fakePostRepo) GetPostsByUserId(_ context.Context, userID uint64, limit, offset int) ([]*model.Post, error) {
	var res []*model.Post
	for _, p := range f.posts {
		if p.UserID == userID {
			res = append(res, p)
		}
	}
	return res, nil
}

func (f *fakePostRepo) CountPosts(_ context.Context) (int64, error) {
	return int64(len(f.posts)), nil
}

func (f *fakePostRepo) CountPostsByUserId(_ context.Context, userID uint64) (int64, error) {
	var count int64
	for _, p := range f.posts {
		if p.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakePostRepo) DeletePost(_ context.Context, id uint64) (int64, error) {
	if _, ok := f.posts[id]; !ok {
		return 0, nil
	}
	delete(f.posts, id)
	return 1, nil
}

func (f *fakePostRepo) IncrLikesCount(_ context.Context, id uint64, delta int) (int64, error) {
	p, ok := f.posts[id]
	if !ok {
		return 0, nil
	}
	p.LikesCount += int64(delta)
	if p.LikesCount < 0 {
		p.LikesCount = 0
	}
	return 1, nil
}

func (f *fakePostRepo) IncrCommentsCount(_ context.Context, id uint64, delta int) (int64, error) {
	p, ok := f.posts[id]
	if !ok {
		return 0, nil
	}
	p.CommentsCount += int64(delta)
	if p.CommentsCount < 0 {
		p.CommentsCount = 0
	}
	return 1, nil
}

func (f *fakePostRepo) SetCounts(_ context.Context, id uint64, likes, comments int64) error {
	if p, ok := f.posts[id]; ok {
		p.LikesCount = likes
		p.CommentsCount = comments
	}
	return nil
}

type fakeUserRepo struct {
	users         map[uint64]*model.User
	createUserErr error
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[uint64]*model.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) GetUserById(_ context.Context, id uint64) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) GetUserByIds(_ context.Context, ids []uint64) ([]*model.User, error) {
	var res []*model.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			res = append(res, u)
		}
	}
	return res, nil
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if f.createUserErr != nil {
		return f.createUserErr
	}
	if user.ID == 0 {
		user.ID = uint64(len(f.users) + 1)
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, id uint64, fields map[string]interface{}) error {
	return nil
}

func (f *fakeUserRepo) IncrFollowersCount(_ context.Context, id uint64, delta int) (int64, error) {
	u, ok := f.users[id]
	if !ok {
		return 0, nil
	}
	u.FollowersCount += int64(delta)
	if u.FollowersCount < 0 {
		u.FollowersCount = 0
	}
	return 1, nil
}

func (f *fakeUserRepo) IncrFollowingCount(_ context.Context, id uint64, delta int) (int64, error) {
	u, ok := f.users[id]
	if !ok {
		return 0, nil
	}
	u.FollowingCount += int64(delta)
	if u.FollowingCount < 0 {
		u.FollowingCount = 0
	}
	return 1, nil
}

func (f *fakeUserRepo) IncrPostsCount(_ context.Context, id uint64, delta int) (int64, error) {
	u, ok := f.users[id]
	if !ok {
		return 0, nil
	}
	u.PostsCount += int64(delta)
	if u.PostsCount < 0 {
		u.PostsCount = 0
	}
	return 1, nil
}

type followKey struct {
	followerID uint64
	followeeID uint64
}

type fakeFollowRepo struct {
	follows map[followKey]*model.UserFollow

	createErr   error
	afterCreate func()
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{follows: make(map[followKey]*model.UserFollow)}
}

func (f *fakeFollowRepo) GetUserFollow(_ context.Context, followerID, followeeID uint64) (*model.UserFollow, error) {
	return f.follows[followKey{followerID, followeeID}], nil
}

func (f *fakeFollowRepo) CreateUserFollow(_ context.Context, follow *model.UserFollow) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.follows[followKey{follow.FollowerID, follow.FolloweeID}] = follow
	if f.afterCreate != nil {
		f.afterCreate()
	}
	return nil
}

func (f *fakeFollowRepo) DeleteUserFollow(_ context.Context, followerID, followeeID uint64) (int64, error) {
	k := followKey{followerID, followeeID}
	if _, ok := f.follows[k]; !ok {
		return 0, nil
	}
	delete(f.follows, k)
	return 1, nil
}

func (f *fakeFollowRepo) GetFollowerIds(_ context.Context, userID uint64, limit, offset int) ([]uint64, error) {
	var res []uint64
	for k := range f.follows {
		if k.followeeID == userID {
			res = append(res, k.followerID)
		}
	}
	return res, nil
}

func (f *fakeFollowRepo) GetFollowingIds(_ context.Context, userID uint64, limit, offset int) ([]uint64, error) {
	var res []uint64
	for k := range f.follows {
		if k.followerID == userID {
			res = append(res, k.followeeID)
		}
	}
	return res, nil
}

func (f *fakeFollowRepo) CountFollowers(_ context.Context, userID uint64) (int64, error) {
	var count int64
	for k := range f.follows {
		if k.followeeID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeFollowRepo) CountFollowing(_ context.Context, userID uint64) (int64, error) {
	var count int64
	for k := range f.follows {
		if k.followerID == userID {
			count++
		}
	}
	return count, nil
}

type fakeConvRepo struct {
	convs  map[uint64]*model.Conversation
	nextID uint64
}

func newFakeConvRepo(convs ...*model.Conversation) *fakeConvRepo {
	f := &fakeConvRepo{convs: make(map[uint64]*model.Conversation)}
	for _, c := range convs {
		f.convs[c.ID] = c
		if c.ID > f.nextID {
			f.nextID = c.ID
		}
	}
	return f
}

func (f *fakeConvRepo) GetConversation(_ context.Context, id uint64) (*model.Conversation, error) {
	return f.convs[id], nil
}

func (f *fakeConvRepo) GetByPeerKey(_ context.Context, peerKey string) (*model.Conversation, error) {
	for _, c := range f.convs {
		if c.PeerKey == peerKey {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeConvRepo) GetOrCreate(ctx context.Context, userA, userB uint64) (*model.Conversation, error) {
	peerKey := model.BuildPeerKey(userA, userB)
	if c, _ := f.GetByPeerKey(ctx, peerKey); c != nil {
		return c, nil
	}
	low, high := userA, userB
	if low > high {
		low, high = high, low
	}
	f.nextID++
	c := &model.Conversation{ID: f.nextID, PeerKey: peerKey, UserLowID: low, UserHighID: high}
	f.convs[c.ID] = c
	return c, nil
}

func (f *fakeConvRepo) TouchLastMessage(_ context.Context, id uint64, messageID string, at time.Time) error {
	if c, ok := f.convs[id]; ok {
		c.LastMessageID = messageID
		c.LastMessageAt = at
	}
	return nil
}

func (f *fakeConvRepo) ListByUser(_ context.Context, userID uint64, limit, offset int) ([]*model.Conversation, error) {
	var res []*model.Conversation
	for _, c := range f.convs {
		if c.HasParticipant(userID) {
			res = append(res, c)
		}
	}
	return res, nil
}

func (f *fakeConvRepo) CountByUser(_ context.Context, userID uint64) (int64, error) {
	var count int64
	for _, c := range f.convs {
		if c.HasParticipant(userID) {
			count++
		}
	}
	return count, nil
}

type fakeMessageRepo struct {
	messages []*mongo.Message

	markReadCalls []uint64 // 每次 MarkReadBulk 命中的会话 ID
}

func (f *fakeMessageRepo) SaveMessage(_ context.Context, msg *mongo.Message) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeMessageRepo) GetMessage(_ context.Context, id primitive.ObjectID) (*mongo.Message, error) {
	for _, m := range f.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMessageRepo) GetHistory(_ context.Context, convID uint64, limit, offset int64) ([]*mongo.Message, error) {
	var res []*mongo.Message
	for _, m := range f.messages {
		if m.ConversationID == convID {
			res = append(res, m)
		}
	}
	return res, nil
}

func (f *fakeMessageRepo) CountByConversation(_ context.Context, convID uint64) (int64, error) {
	var count int64
	for _, m := range f.messages {
		if m.ConversationID == convID {
			count++
		}
	}
	return count, nil
}

func (f *fakeMessageRepo) MarkReadBulk(_ context.Context, convID uint64, readerID uint64) (int64, error) {
	f.markReadCalls = append(f.markReadCalls, convID)
	var marked int64
	for _, m := range f.messages {
		if m.ConversationID == convID && m.SenderID != readerID && !m.IsRead {
			m.IsRead = true
			marked++
		}
	}
	return marked, nil
}

func (f *fakeMessageRepo) CountUnread(_ context.Context, convID uint64, readerID uint64) (int64, error) {
	var count int64
	for _, m := range f.messages {
		if m.ConversationID == convID && m.SenderID != readerID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

type fakeNotificationRepo struct {
	created   []*mongo.Notification
	createErr error
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *mongo.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationRepo) GetList(_ context.Context, recipientID uint64, limit, offset int64) ([]*mongo.Notification, error) {
	var res []*mongo.Notification
	for _, n := range f.created {
		if n.RecipientID == recipientID {
			res = append(res, n)
		}
	}
	return res, nil
}

func (f *fakeNotificationRepo) Count(_ context.Context, recipientID uint64) (int64, error) {
	var count int64
	for _, n := range f.created {
		if n.RecipientID == recipientID {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) GetUnreadCount(_ context.Context, recipientID uint64) (int64, error) {
	var count int64
	for _, n := range f.created {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkAllAsRead(_ context.Context, recipientID uint64) error {
	for _, n := range f.created {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []*mongo.Notification
	var deleted int64
	for _, n := range f.created {
		if n.IsRead && n.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	f.created = kept
	return deleted, nil
}

type publishedEvent struct {
	room    string
	event   string
	payload interface{}
}

type fakePublisher struct {
	published []publishedEvent
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, room string, event string, payload interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedEvent{room: room, event: event, payload: payload})
	return nil
}

type notifiedAction struct {
	kind    string
	actorID uint64
	ownerID uint64
	ref     ActionRef
}

type fakeNotifier struct {
	actions []notifiedAction
	err     error
}

func (f *fakeNotifier) NotifyOnAction(_ context.Context, kind string, actorID, ownerID uint64, ref ActionRef) error {
	if f.err != nil {
		return f.err
	}
	f.actions = append(f.actions, notifiedAction{kind: kind, actorID: actorID, ownerID: ownerID, ref: ref})
	return nil
}
