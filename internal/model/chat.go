package model

import "time"

// 会话类型
const (
	ConvTypeDirect int8 = 1 // 单聊
	ConvTypeGroup  int8 = 2 // 群聊
)

// 消息状态：本地乐观消息与服务端确认消息的显式区分
type MessageState int8

const (
	MessagePending   MessageState = 1 // 本地已展示，等待服务端确认
	MessageConfirmed MessageState = 2 // 服务端已分配 ID
)

// 回执状态
const (
	ReceiptDelivered int8 = 1
	ReceiptRead      int8 = 2
)

// Conversation 会话快照（客户端内存态）
type Conversation struct {
	ID             uint64        `json:"id"`
	Type           int8          `json:"type"` // 1-单聊, 2-群聊
	Title          string        `json:"title"`
	AvatarURL      string        `json:"avatarUrl"`
	Participants   []Participant `json:"participants"`
	LastMsgContent string        `json:"lastMsgContent"`
	LastMsgType    int           `json:"lastMsgType"`
	LastSenderID   uint64        `json:"lastSenderId"`
	LastMessageAt  time.Time     `json:"lastMessageAt"`
	UnreadCount    uint64        `json:"unreadCount"`
	IsMuted        bool          `json:"isMuted"`
	IsPinned       bool          `json:"isPinned"`
	IsHidden       bool          `json:"isHidden"`
}

// Participant 会话成员
type Participant struct {
	UserID    uint64 `json:"userId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}

// ConversationSummary 会话摘要增量（仅携带变化字段，零值字段不参与合并）
type ConversationSummary struct {
	ConversationID uint64    `json:"conversationId"`
	Title          string    `json:"title"`
	AvatarURL      string    `json:"avatarUrl"`
	LastMsgContent string    `json:"lastMsgContent"`
	LastMsgType    int       `json:"lastMsgType"`
	LastSenderID   uint64    `json:"lastSenderId"`
	LastMessageAt  time.Time `json:"lastMessageAt"`
	IsMuted        *bool     `json:"isMuted"`
	IsPinned       *bool     `json:"isPinned"`
	IsHidden       *bool     `json:"isHidden"`
}

// Message 消息
//
// ID 为服务端分配，确认前为 0；ClientID 为本地生成的 UUID，
// 仅本端发出的消息携带，用于乐观消息与确认消息的对账。
type Message struct {
	ID             uint64       `json:"id"`
	ClientID       string       `json:"clientId,omitempty"`
	ConversationID uint64       `json:"conversationId"`
	SenderID       uint64       `json:"senderId"`
	MsgType        int          `json:"msgType"` // 1-文本, 2-图片...
	Content        string       `json:"content"`
	ReplyToID      uint64       `json:"replyToId,omitempty"`
	Edited         bool         `json:"edited"`
	Deleted        bool         `json:"deleted"`
	State          MessageState `json:"state"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	Reactions      []Reaction   `json:"reactions,omitempty"`
	Receipts       []Receipt    `json:"receipts,omitempty"`
}

// Attachment 消息附件引用（上传与渲染由外部模块负责）
type Attachment struct {
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// Reaction 表情回应，(UserID, Emoji) 构成集合语义
type Reaction struct {
	UserID uint64 `json:"userId"`
	Emoji  string `json:"emoji"`
}

// Receipt 已读回执记录
type Receipt struct {
	UserID uint64    `json:"userId"`
	Status int8      `json:"status"`
	ReadAt time.Time `json:"readAt"`
}
