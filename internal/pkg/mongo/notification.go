package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const notificationCollection = "notifications"

// 通知类型
const (
	NotificationKindLike    = "like"
	NotificationKindComment = "comment"
	NotificationKindFollow  = "follow"
)

// Notification 通知收件箱模型
type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipientID uint64             `bson:"recipient_id" json:"recipientId"`      // 通知接收者
	SenderID    uint64             `bson:"sender_id" json:"senderId"`            // 动作发起者
	Kind        string             `bson:"kind" json:"kind"`                      // like / comment / follow
	PostID      uint64             `bson:"post_id,omitempty" json:"postId"`       // 关联帖子（like/comment）
	CommentID   uint64             `bson:"comment_id,omitempty" json:"commentId"` // 关联评论（comment）
	IsRead      bool               `bson:"is_read" json:"isRead"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}
