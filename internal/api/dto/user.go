package dto

// RegisterDTO 注册
type RegisterDTO struct {
	Username string `json:"username" binding:"required" validate:"min=3,max=20"`
	Email    string `json:"email" binding:"required" validate:"email"`
	Password string `json:"password" binding:"required" validate:"min=6,max=40"`
	FullName string `json:"full_name" validate:"omitempty,max=50"`
}

// CredentialDTO 登录凭证
type CredentialDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// AuthDTO 登录结果
type AuthDTO struct {
	Token string   `json:"token"`
	User  *UserDTO `json:"user"`
}

// UserDTO 用户公开信息
type UserDTO struct {
	ID             uint64 `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	Website        string `json:"website"`
	About          string `json:"about"`
	AvatarURL      string `json:"avatar_url"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	PostsCount     int64  `json:"posts_count"`
	IsFollowing    bool   `json:"is_following"`
	CreatedAt      string `json:"created_at"`
}

// UpdateProfileDTO 编辑资料
type UpdateProfileDTO struct {
	FullName *string `json:"full_name" validate:"omitempty,max=50"`
	Website  *string `json:"website" validate:"omitempty,max=100"`
	About    *string `json:"about" validate:"omitempty,max=150"`
}

// AvatarDTO 头像上传结果
type AvatarDTO struct {
	AvatarURL string `json:"avatar_url"`
}

// SearchUserDTO 搜索用户入参
type SearchUserDTO struct {
	Query string `form:"q" binding:"required"`
	PageQuery
}
