package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const messageCollection = "messages"

// Message MongoDB 私信明细模型
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationID uint64             `bson:"conversation_id" json:"conversationId"` // 关联 MySQL 的会话 ID
	SenderID       uint64             `bson:"sender_id" json:"senderId"`             // 发送者 UID
	Content        string             `bson:"content" json:"content"`                // 文本内容
	IsRead         bool               `bson:"is_read" json:"isRead"`                 // 接收方是否已读
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`           // 消息发送时间
}
