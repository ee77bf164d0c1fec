package dto

// SendMessageDTO 发送私信入参
type SendMessageDTO struct {
	TargetUserID uint64 `json:"target_user_id" binding:"required"`
	Content      string `json:"content" binding:"required" validate:"max=1000"`
}

// MessageDTO 私信消息
type MessageDTO struct {
	ID             string `json:"id"`
	ConversationID uint64 `json:"conversation_id"`
	SenderID       uint64 `json:"sender_id"`
	Content        string `json:"content"`
	IsRead         bool   `json:"is_read"`
	CreatedAt      string `json:"created_at"`
}

// ConversationDTO 会话列表项
type ConversationDTO struct {
	ID          uint64      `json:"id"`
	Peer        *UserDTO    `json:"peer"`
	LastMessage *MessageDTO `json:"last_message,omitempty"`
	UnreadCount int64       `json:"unread_count"`
	UpdatedAt   string      `json:"updated_at"`
}

// JoinConversationDTO 客户端上行的进入会话事件
type JoinConversationDTO struct {
	Event string `json:"event"`
	Data  struct {
		ConversationID uint64 `json:"conversation_id"`
	} `json:"data"`
}
