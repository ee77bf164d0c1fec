package handler

import (
	"Ripple/internal/pkg/response"
	"Ripple/internal/service"

	"github.com/gin-gonic/gin"
)

type UserFollowHandler struct {
	userFollowSvc service.UserFollowService
}

func NewUserFollowHandler(userFollowSvc service.UserFollowService) *UserFollowHandler {
	return &UserFollowHandler{userFollowSvc: userFollowSvc}
}

// ToggleFollow 关注开关：同一接口关注/取关
func (s *UserFollowHandler) ToggleFollow(c *gin.Context) {
	followeeID, ok := parseIDParam(c, "user_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	followerID := c.GetUint64("user_id")

	res, err := s.userFollowSvc.ToggleFollow(c.Request.Context(), followerID, followeeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetFollowers 粉丝列表
func (s *UserFollowHandler) GetFollowers(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	page, limit := getPagination(c)

	list, meta, err := s.userFollowSvc.GetFollowers(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessPage(c, list, meta)
}

// GetFollowing 关注列表
func (s *UserFollowHandler) GetFollowing(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	page, limit := getPagination(c)

	list, meta, err := s.userFollowSvc.GetFollowing(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessPage(c, list, meta)
}
