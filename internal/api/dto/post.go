package dto

// PostDTO 帖子
type PostDTO struct {
	ID            uint64 `json:"id"`
	Content       string `json:"content"`
	ImageURL      string `json:"image_url"`
	LikesCount    int64  `json:"likes_count"`
	CommentsCount int64  `json:"comments_count"`
	IsLiked       bool   `json:"is_liked"`
	CreatedAt     string `json:"created_at"`

	// User
	UserID    uint64 `json:"user_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// CreatePostDTO 发帖入参，正文与图片至少其一
type CreatePostDTO struct {
	Content string `form:"content" validate:"omitempty,max=2000"`
}

// LikeToggleDTO 点赞开关结果
type LikeToggleDTO struct {
	IsLiked    bool  `json:"is_liked"`
	LikesCount int64 `json:"likes_count"`
}

// CommentBaseDTO 发表评论，正文与配图至少其一
type CommentBaseDTO struct {
	Content string `form:"content" json:"content" validate:"omitempty,max=250"`
}

// CommentDTO 评论
type CommentDTO struct {
	ID        uint64 `json:"id"`
	PostID    uint64 `json:"post_id"`
	Content   string `json:"content"`
	ImageURL  string `json:"image_url"`
	CreatedAt string `json:"created_at"`

	// User
	UserID    uint64 `json:"user_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}
