package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MessageRepo interface {
	SaveMessage(ctx context.Context, msg *Message) error
	GetMessage(ctx context.Context, id primitive.ObjectID) (*Message, error)
	GetHistory(ctx context.Context, convID uint64, limit, offset int64) ([]*Message, error)
	CountByConversation(ctx context.Context, convID uint64) (int64, error)
	MarkReadBulk(ctx context.Context, convID uint64, readerID uint64) (int64, error)
	CountUnread(ctx context.Context, convID uint64, readerID uint64) (int64, error)
}

type messageRepoImpl struct {
	col *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) MessageRepo {
	return &messageRepoImpl{
		col: db.Collection(messageCollection),
	}
}

// SaveMessage 将消息存入 MongoDB
func (s *messageRepoImpl) SaveMessage(ctx context.Context, msg *Message) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, msg)
	return err
}

// GetMessage 按 ID 获取单条消息，不存在时返回 nil
func (s *messageRepoImpl) GetMessage(ctx context.Context, id primitive.ObjectID) (*Message, error) {
	var msg Message
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// GetHistory 按发送时间升序分页拉取会话内消息
func (s *messageRepoImpl) GetHistory(ctx context.Context, convID uint64, limit, offset int64) ([]*Message, error) {
	filter := bson.M{"conversation_id": convID}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var messages []*Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

// CountByConversation 获取会话内消息总数
func (s *messageRepoImpl) CountByConversation(ctx context.Context, convID uint64) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"conversation_id": convID})
}

// MarkReadBulk 将会话内对方发来的全部未读消息置为已读
func (s *messageRepoImpl) MarkReadBulk(ctx context.Context, convID uint64, readerID uint64) (int64, error) {
	filter := bson.M{
		"conversation_id": convID,
		"sender_id":       bson.M{"$ne": readerID},
		"is_read":         false,
	}
	update := bson.M{"$set": bson.M{"is_read": true}}
	res, err := s.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountUnread 统计会话内对方发来的未读消息数
func (s *messageRepoImpl) CountUnread(ctx context.Context, convID uint64, readerID uint64) (int64, error) {
	filter := bson.M{
		"conversation_id": convID,
		"sender_id":       bson.M{"$ne": readerID},
		"is_read":         false,
	}
	return s.col.CountDocuments(ctx, filter)
}
