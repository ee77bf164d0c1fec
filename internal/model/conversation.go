package model

import (
	"fmt"
	"time"
)

// Conversation 单聊会话表，惰性创建且永不删除
type Conversation struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PeerKey       string    `gorm:"uniqueIndex;type:varchar(64);not null" json:"peerKey"` // 小ID_大ID
	UserLowID     uint64    `gorm:"not null;index" json:"userLowId"`
	UserHighID    uint64    `gorm:"not null;index" json:"userHighId"`
	LastMessageID string    `gorm:"type:varchar(32)" json:"lastMessageId"` // Mongo 消息 ObjectID
	LastMessageAt time.Time `gorm:"index" json:"lastMessageAt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Conversation) TableName() string { return "conversations" }

// HasParticipant 判断用户是否是会话成员
func (c *Conversation) HasParticipant(userID uint64) bool {
	return c.UserLowID == userID || c.UserHighID == userID
}

// PeerOf 返回会话中另一方的用户 ID
func (c *Conversation) PeerOf(userID uint64) uint64 {
	if c.UserLowID == userID {
		return c.UserHighID
	}
	return c.UserLowID
}

// BuildPeerKey 生成参与者对的规范键，保证同一对用户只有一个会话
func BuildPeerKey(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d_%d", a, b)
}
