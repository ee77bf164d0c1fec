package handler

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/pkg/response"
	"Ripple/internal/service"

	"github.com/gin-gonic/gin"
)

type PostActionHandler struct {
	actionSvc service.PostActionService
}

func NewPostActionHandler(actionSvc service.PostActionService) *PostActionHandler {
	return &PostActionHandler{
		actionSvc: actionSvc,
	}
}

// ToggleLike 点赞开关：同一接口点赞/取消赞
func (s *PostActionHandler) ToggleLike(c *gin.Context) {
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")

	res, err := s.actionSvc.ToggleLike(c.Request.Context(), userID, postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// CreateComment 发表评论
func (s *PostActionHandler) CreateComment(c *gin.Context) {
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")

	req := dto.CommentBaseDTO{Content: c.PostForm("content")}
	image, err := c.FormFile("image")
	if err != nil {
		image = nil
	}

	res, err := s.actionSvc.CreateComment(c.Request.Context(), userID, postID, &req, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// DeleteComment 删除自己的评论
func (s *PostActionHandler) DeleteComment(c *gin.Context) {
	commentID, ok := parseIDParam(c, "comment_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")

	if err := s.actionSvc.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GetComments 评论列表
func (s *PostActionHandler) GetComments(c *gin.Context) {
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	page, limit := getPagination(c)

	list, meta, err := s.actionSvc.GetCommentsByPostId(c.Request.Context(), postID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessPage(c, list, meta)
}
