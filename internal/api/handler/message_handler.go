package handler

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/pkg/response"
	"Ripple/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageSvc service.MessageService
}

func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// SendMessage 发送私信
func (s *MessageHandler) SendMessage(c *gin.Context) {
	userID := c.GetUint64("user_id")

	var req dto.SendMessageDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.messageSvc.SendMessage(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetHistory 会话历史
func (s *MessageHandler) GetHistory(c *gin.Context) {
	convID, ok := parseIDParam(c, "conversation_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")
	page, limit := getPagination(c)

	list, meta, err := s.messageSvc.GetHistory(c.Request.Context(), userID, convID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessPage(c, list, meta)
}

// ListConversations 会话列表
func (s *MessageHandler) ListConversations(c *gin.Context) {
	userID := c.GetUint64("user_id")
	page, limit := getPagination(c)

	list, meta, err := s.messageSvc.ListConversations(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessPage(c, list, meta)
}
