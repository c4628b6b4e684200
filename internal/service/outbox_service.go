package service

import (
	"Quayside/internal/client/dto"
	"Quayside/internal/model"
	"Quayside/internal/pkg/rest"
	"Quayside/internal/store"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// OutboxService 本端发起的写入：乐观发送与已读上报
type OutboxService interface {
	Send(ctx context.Context, convID uint64, req *dto.SendMessageReq) (*model.Message, error)
	MarkRead(ctx context.Context, convID uint64) (uint64, error)
}

type outboxServiceImpl struct {
	api   rest.PlatformAPI
	store *store.ConversationStore
}

func NewOutboxService(api rest.PlatformAPI, st *store.ConversationStore) OutboxService {
	return &outboxServiceImpl{api: api, store: st}
}

// Send 乐观发送流水线：Pending 占位 → 网络写入 → 确认或回滚
//
// 成功返回服务端确认记录；失败返回被回滚的占位消息
// （内容即用户草稿）和 ErrMessageSendFailed，由调用方恢复输入框。
// 不做自动重试。
func (s *outboxServiceImpl) Send(ctx context.Context, convID uint64, req *dto.SendMessageReq) (*model.Message, error) {
	if !s.store.HasConversation(convID) {
		return nil, ErrConversationNotFound
	}

	now := time.Now()
	placeholder := &model.Message{
		ClientID:       uuid.NewString(),
		ConversationID: convID,
		SenderID:       s.store.LocalUserID(),
		MsgType:        req.MsgType,
		Content:        req.Content,
		ReplyToID:      req.ReplyToID,
		State:          model.MessagePending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.store.InsertPending(placeholder)

	confirmed, err := s.api.SendMessage(ctx, convID, req)
	if err != nil {
		log.WarnContext(ctx, "消息发送失败，占位消息已回滚", "conversationID", convID, "err", err)
		draft := s.store.RemovePending(convID, placeholder.ClientID)
		if draft == nil {
			draft = placeholder
		}
		return draft, ErrMessageSendFailed
	}

	msg := confirmed.ToMessage()
	msg.ConversationID = convID
	msg.SenderID = s.store.LocalUserID()
	s.store.ReconcilePending(convID, placeholder.ClientID, msg)

	s.store.UpdateConversationSummary(&model.ConversationSummary{
		ConversationID: convID,
		LastMsgContent: msg.Content,
		LastMsgType:    msg.MsgType,
		LastSenderID:   msg.SenderID,
		LastMessageAt:  msg.CreatedAt,
	})

	return msg, nil
}

// MarkRead 本地已读并向服务端上报进度，返回清零前的未读数
//
// 上报失败只记日志：本地计数保持清零，与服务端的偏差交由
// 定时校准任务在下一次全量刷新时修正。
func (s *outboxServiceImpl) MarkRead(ctx context.Context, convID uint64) (uint64, error) {
	if !s.store.HasConversation(convID) {
		return 0, ErrConversationNotFound
	}

	var lastID uint64
	for _, m := range s.store.Messages(convID) {
		if m.ID > lastID {
			lastID = m.ID
		}
	}

	prev := s.store.MarkConversationRead(convID)

	if lastID > 0 {
		if err := s.api.MarkRead(ctx, convID, lastID); err != nil {
			log.WarnContext(ctx, "已读进度上报失败", "conversationID", convID, "lastMessageID", lastID, "err", err)
		}
	}
	return prev, nil
}
