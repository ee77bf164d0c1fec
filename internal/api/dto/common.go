package dto

// Response 统一响应体
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Meta    *PageMeta   `json:"meta,omitempty"`
}

// PageMeta 分页元信息
type PageMeta struct {
	Total       int64 `json:"total"`
	UnreadCount int64 `json:"unread_count,omitempty"`
	CurrentPage int   `json:"current_page"`
	Limit       int   `json:"limit"`
	TotalPages  int   `json:"total_pages"`
}

// PageQuery 通用分页入参
type PageQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}
