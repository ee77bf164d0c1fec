package model

import "time"

type UserFollow struct {
	FollowerID uint64    `gorm:"primaryKey" json:"followerId"`
	FolloweeID uint64    `gorm:"primaryKey;index:idx_followee_id" json:"followeeId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (UserFollow) TableName() string {
	return "user_follows"
}
