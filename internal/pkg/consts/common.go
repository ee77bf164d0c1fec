package consts

const (
	MimePrefixImage = "image"
)

const (
	DefaultAvatarURL = "default_avatar.png"
)

// 实时推送事件名
const (
	EventNewMessage   = "new_message"
	EventNotification = "notification"
)

// 客户端上行事件名
const (
	ClientEventJoinConversation = "join_conversation"
)
