package dto

// NotificationDTO 通知列表项
type NotificationDTO struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	PostID    uint64 `json:"post_id,omitempty"`
	CommentID uint64 `json:"comment_id,omitempty"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`

	// Sender
	SenderID   uint64 `json:"sender_id"`
	SenderName string `json:"sender_name"`
	AvatarURL  string `json:"avatar_url"`
}
