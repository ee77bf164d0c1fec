package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepo interface {
	Create(ctx context.Context, n *Notification) error
	GetList(ctx context.Context, recipientID uint64, limit, offset int64) ([]*Notification, error)
	Count(ctx context.Context, recipientID uint64) (int64, error)
	GetUnreadCount(ctx context.Context, recipientID uint64) (int64, error)
	MarkAllAsRead(ctx context.Context, recipientID uint64) error
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type notificationRepoImpl struct {
	col *mongo.Collection
}

func NewNotificationRepo(db *mongo.Database) NotificationRepo {
	return &notificationRepoImpl{
		col: db.Collection(notificationCollection),
	}
}

// Create 插入新通知
func (s *notificationRepoImpl) Create(ctx context.Context, n *Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, n)
	return err
}

// GetList 分页获取用户的通知列表（按时间倒序）
func (s *notificationRepoImpl) GetList(ctx context.Context, recipientID uint64, limit, offset int64) ([]*Notification, error) {
	filter := bson.M{"recipient_id": recipientID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var list []*Notification
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Count 获取用户的通知总数
func (s *notificationRepoImpl) Count(ctx context.Context, recipientID uint64) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"recipient_id": recipientID})
}

// GetUnreadCount 获取用户的未读通知总数
func (s *notificationRepoImpl) GetUnreadCount(ctx context.Context, recipientID uint64) (int64, error) {
	filter := bson.M{"recipient_id": recipientID, "is_read": false}
	return s.col.CountDocuments(ctx, filter)
}

// MarkAllAsRead 一键清除未读（将用户所有未读通知标记为已读）
func (s *notificationRepoImpl) MarkAllAsRead(ctx context.Context, recipientID uint64) error {
	filter := bson.M{"recipient_id": recipientID, "is_read": false}
	update := bson.M{"$set": bson.M{"is_read": true}}
	_, err := s.col.UpdateMany(ctx, filter, update)
	return err
}

// DeleteReadBefore 清理指定时间之前的已读通知
func (s *notificationRepoImpl) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	filter := bson.M{"is_read": true, "created_at": bson.M{"$lt": cutoff}}
	res, err := s.col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
