package dto

// FollowToggleDTO 关注开关结果
type FollowToggleDTO struct {
	IsFollowing    bool  `json:"is_following"`
	FollowersCount int64 `json:"followers_count"`
}
