package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid         = errors.New("参数错误")
	ErrConversationNotFound = errors.New("会话不存在")
	ErrMessageSendFailed    = errors.New("消息发送失败，草稿已保留")
	ErrHistoryFetchFailed   = errors.New("历史消息拉取失败")
	ErrListRefreshFailed    = errors.New("会话列表刷新失败")
	ErrDirectOpenFailed     = errors.New("发起单聊失败")
	ErrChannelNotConnected  = errors.New("推送通道未连接")
	UnExpectedError         = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:         BadRequest,
	ErrConversationNotFound: NotFound,
	ErrMessageSendFailed:    InternalServerError,
	ErrHistoryFetchFailed:   InternalServerError,
	ErrListRefreshFailed:    InternalServerError,
	ErrDirectOpenFailed:     InternalServerError,
	ErrChannelNotConnected:  InternalServerError,
	UnExpectedError:         InternalServerError,
}
