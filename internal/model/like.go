package model

import (
	"time"
)

// Like 点赞记录，(UserID, PostID) 复合主键保证同一用户对同一帖子至多一条
type Like struct {
	UserID    uint64    `gorm:"primaryKey" json:"userId"`
	PostID    uint64    `gorm:"primaryKey;index:idx_post_id" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Like) TableName() string {
	return "likes"
}
