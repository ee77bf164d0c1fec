package es

// UserES 对应 user_index 的文档结构
type UserES struct {
	ID             uint64 `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	About          string `json:"about,omitempty"`
	AvatarURL      string `json:"avatar_url"`
	FollowersCount int64  `json:"followers_count"`
}
