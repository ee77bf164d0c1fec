package model

import (
	"time"
)

type User struct {
	ID              uint64    `gorm:"primaryKey"`
	Username        string    `gorm:"type:varchar(50);uniqueIndex:idx_username;not null" json:"username"`
	Email           string    `gorm:"type:varchar(255);uniqueIndex:idx_email;not null" json:"email"`
	Password        string    `gorm:"type:varchar(255);not null" json:"-"`
	FullName        string    `gorm:"type:varchar(100)" json:"fullName"`
	Website         string    `gorm:"type:varchar(255)" json:"website"`
	About           string    `gorm:"type:varchar(150)" json:"about"`
	AvatarURL       string    `gorm:"type:varchar(512)" json:"avatarUrl"`
	AvatarObjectKey string    `gorm:"type:varchar(512)" json:"-"`
	FollowersCount  int64     `gorm:"not null;default:0" json:"followersCount"`
	FollowingCount  int64     `gorm:"not null;default:0" json:"followingCount"`
	PostsCount      int64     `gorm:"not null;default:0" json:"postsCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
