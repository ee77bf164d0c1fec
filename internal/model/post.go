package model

import (
	"time"
)

type Post struct {
	ID             uint64    `gorm:"primaryKey"`
	UserID         uint64    `gorm:"not null;index:idx_user_id" json:"userId"`
	Content        string    `gorm:"type:varchar(2000)" json:"content"`
	ImageURL       string    `gorm:"type:varchar(512)" json:"imageUrl"`
	ImageObjectKey string    `gorm:"type:varchar(512)" json:"-"`
	LikesCount     int64     `gorm:"not null;default:0" json:"likesCount"`
	CommentsCount  int64     `gorm:"not null;default:0" json:"commentsCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	User User `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

func (Post) TableName() string {
	return "posts"
}
