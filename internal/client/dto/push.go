package dto

import "github.com/goccy/go-json"

// PushFrame 推送通道帧结构
type PushFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// TypingPush 输入状态事件载荷
type TypingPush struct {
	ConversationID uint64 `json:"conversation_id" validate:"required"`
	UserID         uint64 `json:"user_id" validate:"required"`
}

// ReadReceiptPush 已读回执事件载荷
type ReadReceiptPush struct {
	ConversationID uint64 `json:"conversation_id" validate:"required"`
	UserID         uint64 `json:"user_id" validate:"required"`
	LastMessageID  uint64 `json:"last_message_id" validate:"required"`
}

// ReactionPush 表情回应事件载荷
type ReactionPush struct {
	ConversationID uint64 `json:"conversation_id" validate:"required"`
	MessageID      uint64 `json:"message_id" validate:"required"`
	UserID         uint64 `json:"user_id" validate:"required"`
	Emoji          string `json:"emoji" validate:"required"`
}

// MessageDeletedPush 消息删除事件载荷
type MessageDeletedPush struct {
	ConversationID uint64 `json:"conversation_id" validate:"required"`
	MessageID      uint64 `json:"message_id" validate:"required"`
}

// ConvNewMessagePush 未知会话发现信号载荷
type ConvNewMessagePush struct {
	ConversationID uint64 `json:"conversation_id" validate:"required"`
}

// JoinConversationPush 出站：声明对某会话的订阅
type JoinConversationPush struct {
	ConversationID uint64 `json:"conversation_id"`
	UserID         uint64 `json:"user_id"`
}

// LeaveConversationPush 出站：取消对某会话的订阅
type LeaveConversationPush struct {
	ConversationID uint64 `json:"conversation_id"`
}
