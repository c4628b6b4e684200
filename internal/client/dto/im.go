package dto

import (
	"Quayside/internal/model"
	"time"
)

// ConversationDTO 会话列表项
type ConversationDTO struct {
	ConversationID uint64           `json:"conversation_id"`
	Type           int8             `json:"type"` // 1-单聊, 2-群聊
	Title          string           `json:"title"`
	AvatarURL      string           `json:"avatar_url"`
	Participants   []ParticipantDTO `json:"participants"`
	LastMsgContent string           `json:"last_msg_content"`
	LastMsgType    int              `json:"last_msg_type"`
	LastSenderID   uint64           `json:"last_sender_id"`
	LastMessageAt  time.Time        `json:"lastMessageAt"`
	UnreadCount    uint64           `json:"unreadCount"`
	IsMuted        bool             `json:"isMuted"`
	IsPinned       bool             `json:"isPinned"`
	IsHidden       bool             `json:"isHidden"`
}

// ParticipantDTO 会话成员
type ParticipantDTO struct {
	UserID    uint64 `json:"user_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// MessageDTO 消息明细
type MessageDTO struct {
	ID             uint64          `json:"id"`
	ConversationID uint64          `json:"conversation_id"`
	SenderID       uint64          `json:"sender_id"`
	MsgType        int             `json:"msg_type"`
	Content        string          `json:"content"`
	ReplyToID      uint64          `json:"reply_to_id,omitempty"`
	Edited         bool            `json:"edited"`
	Deleted        bool            `json:"deleted"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Attachments    []AttachmentDTO `json:"attachments,omitempty"`
	Reactions      []ReactionDTO   `json:"reactions,omitempty"`
}

// AttachmentDTO 附件引用
type AttachmentDTO struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// ReactionDTO 表情回应
type ReactionDTO struct {
	UserID uint64 `json:"user_id"`
	Emoji  string `json:"emoji"`
}

// SendMessageReq 发送消息请求体
type SendMessageReq struct {
	Content   string `json:"content" validate:"required"`
	MsgType   int    `json:"type" validate:"required"` // 1-文本, 2-图片...
	ReplyToID uint64 `json:"replyTo,omitempty"`
}

// MarkAsReadReq 标记已读请求体
type MarkAsReadReq struct {
	LastMessageID uint64 `json:"lastMessageId" validate:"required"`
}

// CreateDirectReq 发起单聊请求体
type CreateDirectReq struct {
	OtherUserID uint64 `json:"otherUserId" validate:"required"`
}

// CreateDirectResp 发起单聊响应
type CreateDirectResp struct {
	ConversationID uint64 `json:"conversationId"`
	Created        bool   `json:"created"`
}

// ToConversation 转换为内存模型
func (d *ConversationDTO) ToConversation() *model.Conversation {
	participants := make([]model.Participant, 0, len(d.Participants))
	for _, p := range d.Participants {
		participants = append(participants, model.Participant{
			UserID:    p.UserID,
			Username:  p.Username,
			AvatarURL: p.AvatarURL,
		})
	}
	return &model.Conversation{
		ID:             d.ConversationID,
		Type:           d.Type,
		Title:          d.Title,
		AvatarURL:      d.AvatarURL,
		Participants:   participants,
		LastMsgContent: d.LastMsgContent,
		LastMsgType:    d.LastMsgType,
		LastSenderID:   d.LastSenderID,
		LastMessageAt:  d.LastMessageAt,
		UnreadCount:    d.UnreadCount,
		IsMuted:        d.IsMuted,
		IsPinned:       d.IsPinned,
		IsHidden:       d.IsHidden,
	}
}

// ToMessage 转换为内存模型
func (d *MessageDTO) ToMessage() *model.Message {
	attachments := make([]model.Attachment, 0, len(d.Attachments))
	for _, a := range d.Attachments {
		attachments = append(attachments, model.Attachment{
			URL:      a.URL,
			MimeType: a.MimeType,
			Size:     a.Size,
		})
	}
	reactions := make([]model.Reaction, 0, len(d.Reactions))
	for _, r := range d.Reactions {
		reactions = append(reactions, model.Reaction{UserID: r.UserID, Emoji: r.Emoji})
	}
	return &model.Message{
		ID:             d.ID,
		ConversationID: d.ConversationID,
		SenderID:       d.SenderID,
		MsgType:        d.MsgType,
		Content:        d.Content,
		ReplyToID:      d.ReplyToID,
		Edited:         d.Edited,
		Deleted:        d.Deleted,
		State:          model.MessageConfirmed,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		Attachments:    attachments,
		Reactions:      reactions,
	}
}
