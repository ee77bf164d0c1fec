package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrParamInvalid            = errors.New("参数错误")
	ErrUserNotFound            = errors.New("用户不存在")
	ErrUserExist               = errors.New("用户已存在")
	ErrUserUsernameExist       = errors.New("用户名已存在")
	ErrUserEmailExist          = errors.New("邮箱已注册")
	ErrPasswordIncorrect       = errors.New("密码错误")
	ErrMissingLoginCredentials = errors.New("缺少登录凭据")
	ErrFileNotSupported        = errors.New("不支持的文件类型")
	ErrFileNotExist            = errors.New("文件不存在")
	ErrUserFollowSelf          = errors.New("用户不能关注自己")
	ErrPostNotFound            = errors.New("帖子不存在")
	ErrPostContentEmpty        = errors.New("帖子内容不能为空")
	ErrPostCommentNotFound     = errors.New("评论不存在")
	ErrCommentContentEmpty     = errors.New("评论内容不能为空")
	ErrActionDuplicate         = errors.New("重复操作")
	ErrNotificationNotFound    = errors.New("通知不存在")
	ErrTargetUserInvalid       = errors.New("目标用户无效")
	ErrConversationNotFound    = errors.New("会话不存在")
	ErrMessageContentEmpty     = errors.New("消息内容不能为空")
	UnauthorizedError          = errors.New("权限不足")
	UnExpectedError            = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:            BadRequest,
	ErrUserNotFound:            NotFound,
	ErrUserExist:               Conflict,
	ErrUserUsernameExist:       Conflict,
	ErrUserEmailExist:          Conflict,
	ErrPasswordIncorrect:       Unauthorized,
	ErrMissingLoginCredentials: Unauthorized,
	ErrFileNotSupported:        BadRequest,
	ErrFileNotExist:            NotFound,
	ErrUserFollowSelf:          BadRequest,
	ErrPostNotFound:            NotFound,
	ErrPostContentEmpty:        BadRequest,
	ErrPostCommentNotFound:     NotFound,
	ErrCommentContentEmpty:     BadRequest,
	ErrActionDuplicate:         BadRequest,
	ErrNotificationNotFound:    NotFound,
	ErrTargetUserInvalid:       BadRequest,
	ErrConversationNotFound:    NotFound,
	ErrMessageContentEmpty:     BadRequest,
	UnauthorizedError:          Unauthorized,
	UnExpectedError:            InternalServerError,
}
