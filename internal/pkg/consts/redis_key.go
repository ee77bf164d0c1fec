package consts

const (
	RealtimeUserKey         = "rt:user:"
	RealtimeConversationKey = "rt:conv:"
	PostCountsDirtyKey      = "post:counts:dirty"
	UserCountsDirtyKey      = "user:counts:dirty"
	AuthDenyKey             = "auth:deny:"
)
