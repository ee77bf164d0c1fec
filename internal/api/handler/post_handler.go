package handler

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/pkg/response"
	"Ripple/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postSvc service.PostService
}

func NewPostHandler(postSvc service.PostService) *PostHandler {
	return &PostHandler{postSvc: postSvc}
}

// CreatePost 发帖（multipart：content + 可选 image）
func (s *PostHandler) CreatePost(c *gin.Context) {
	userID := c.GetUint64("user_id")

	req := dto.CreatePostDTO{Content: c.PostForm("content")}
	image, err := c.FormFile("image")
	if err != nil {
		image = nil
	}

	res, err := s.postSvc.CreatePost(c.Request.Context(), userID, &req, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetFeed 帖子时间线
func (s *PostHandler) GetFeed(c *gin.Context) {
	viewerID := c.GetUint64("user_id")
	page, limit := getPagination(c)

	list, meta, err := s.postSvc.GetFeed(c.Request.Context(), viewerID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessPage(c, list, meta)
}

// GetPost 帖子详情
func (s *PostHandler) GetPost(c *gin.Context) {
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	viewerID := c.GetUint64("user_id")

	res, err := s.postSvc.GetPost(c.Request.Context(), viewerID, postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetUserPosts 某用户的帖子列表
func (s *PostHandler) GetUserPosts(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	viewerID := c.GetUint64("user_id")
	page, limit := getPagination(c)

	list, meta, err := s.postSvc.GetUserPosts(c.Request.Context(), viewerID, userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessPage(c, list, meta)
}

// DeletePost 删除自己的帖子
func (s *PostHandler) DeletePost(c *gin.Context) {
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")

	if err := s.postSvc.DeletePost(c.Request.Context(), userID, postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
