package service

import (
	"Quayside/internal/client/dto"
	"Quayside/internal/model"
	"Quayside/internal/pkg/consts"
	"Quayside/internal/pkg/pushchan"
	"Quayside/internal/pkg/util"
	"Quayside/internal/store"
	"context"
	log "log/slog"
	"time"

	"github.com/goccy/go-json"
)

// PushRouter 推送事件路由：通道入站事件的唯一消费者
//
// 每种事件恰好映射为一次存储变更（部分附带副作用），
// 乱序投递由存储层的按 ID 合并 + 按时间重排兜底。
type PushRouter interface {
	Run(ctx context.Context) error
}

type pushRouterImpl struct {
	store    *store.ConversationStore
	sync     SyncService
	presence PresenceService
	channel  pushchan.Channel
}

func NewPushRouter(st *store.ConversationStore, sync SyncService, presence PresenceService, channel pushchan.Channel) PushRouter {
	return &pushRouterImpl{
		store:    st,
		sync:     sync,
		presence: presence,
		channel:  channel,
	}
}

// Run 消费事件流直至 ctx 取消或通道关闭
func (s *pushRouterImpl) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-s.channel.Events():
			if !ok {
				return nil
			}
			s.dispatch(ctx, frame)
		}
	}
}

// dispatch 单条事件处理，失败只记日志，绝不中断会话
func (s *pushRouterImpl) dispatch(ctx context.Context, frame *dto.PushFrame) {
	switch frame.Event {
	case consts.EventConnect:
		s.presence.Rejoin(ctx)

	case consts.EventMessageNew:
		s.onMessageNew(ctx, frame.Data)

	case consts.EventMessageEdited:
		s.onMessageEdited(ctx, frame.Data)

	case consts.EventMessageDeleted:
		payload := &dto.MessageDeletedPush{}
		if !s.decode(ctx, frame.Event, frame.Data, payload) {
			return
		}
		s.store.RemoveMessage(payload.ConversationID, payload.MessageID)

	case consts.EventUserTyping:
		payload := &dto.TypingPush{}
		if !s.decode(ctx, frame.Event, frame.Data, payload) {
			return
		}
		if payload.UserID == s.store.LocalUserID() {
			return
		}
		s.store.SetTyping(payload.ConversationID, payload.UserID, time.Now())

	case consts.EventUserStopTyping:
		payload := &dto.TypingPush{}
		if !s.decode(ctx, frame.Event, frame.Data, payload) {
			return
		}
		s.store.ClearTyping(payload.ConversationID, payload.UserID)

	case consts.EventMessagesRead:
		payload := &dto.ReadReceiptPush{}
		if !s.decode(ctx, frame.Event, frame.Data, payload) {
			return
		}
		s.store.ApplyReadReceipt(payload.ConversationID, payload.UserID, payload.LastMessageID)

	case consts.EventReactionAdd:
		payload := &dto.ReactionPush{}
		if !s.decode(ctx, frame.Event, frame.Data, payload) {
			return
		}
		s.store.AddReaction(payload.ConversationID, payload.MessageID, payload.UserID, payload.Emoji)

	case consts.EventReactionRemove:
		payload := &dto.ReactionPush{}
		if !s.decode(ctx, frame.Event, frame.Data, payload) {
			return
		}
		s.store.RemoveReaction(payload.ConversationID, payload.MessageID, payload.UserID, payload.Emoji)

	case consts.EventConvNewMessage:
		payload := &dto.ConvNewMessagePush{}
		if !s.decode(ctx, frame.Event, frame.Data, payload) {
			return
		}
		if err := s.sync.EnsureConversation(ctx, payload.ConversationID); err != nil {
			log.WarnContext(ctx, "未知会话发现处理失败", "conversationID", payload.ConversationID, "err", err)
		}

	default:
		log.DebugContext(ctx, "未识别的推送事件，已忽略", "event", frame.Event)
	}
}

// onMessageNew 新消息：合并入存储并结算未读数与会话摘要
func (s *pushRouterImpl) onMessageNew(ctx context.Context, data json.RawMessage) {
	d := &dto.MessageDTO{}
	if !s.decodeMessage(ctx, consts.EventMessageNew, data, d) {
		return
	}
	msg := d.ToMessage()

	if !s.store.UpsertMessage(msg.ConversationID, msg) {
		// 会话未知：刷新列表后重放本次合并，避免丢掉全新会话的首条消息
		if err := s.sync.EnsureConversation(ctx, msg.ConversationID); err != nil {
			log.WarnContext(ctx, "新消息落在未知会话且刷新失败", "conversationID", msg.ConversationID, "err", err)
			return
		}
		if !s.store.UpsertMessage(msg.ConversationID, msg) {
			return
		}
	}

	if msg.SenderID != s.store.LocalUserID() && msg.ConversationID != s.store.ActiveConversation() {
		s.store.IncrementUnread(msg.ConversationID)
	}

	s.store.UpdateConversationSummary(&model.ConversationSummary{
		ConversationID: msg.ConversationID,
		LastMsgContent: msg.Content,
		LastMsgType:    msg.MsgType,
		LastSenderID:   msg.SenderID,
		LastMessageAt:  msg.CreatedAt,
	})
}

// onMessageEdited 编辑消息：同 ID 原地替换
func (s *pushRouterImpl) onMessageEdited(ctx context.Context, data json.RawMessage) {
	d := &dto.MessageDTO{}
	if !s.decodeMessage(ctx, consts.EventMessageEdited, data, d) {
		return
	}
	msg := d.ToMessage()

	if !s.store.UpsertMessage(msg.ConversationID, msg) {
		if err := s.sync.EnsureConversation(ctx, msg.ConversationID); err != nil {
			return
		}
		s.store.UpsertMessage(msg.ConversationID, msg)
	}
}

func (s *pushRouterImpl) decode(ctx context.Context, event string, data json.RawMessage, out interface{}) bool {
	if err := json.Unmarshal(data, out); err != nil {
		log.WarnContext(ctx, "推送载荷解析失败，已丢弃", "event", event, "err", err)
		return false
	}
	if err := util.ValidateDTO(out); err != nil {
		log.WarnContext(ctx, "推送载荷校验失败，已丢弃", "event", event, "err", err)
		return false
	}
	return true
}

func (s *pushRouterImpl) decodeMessage(ctx context.Context, event string, data json.RawMessage, out *dto.MessageDTO) bool {
	if err := json.Unmarshal(data, out); err != nil {
		log.WarnContext(ctx, "推送载荷解析失败，已丢弃", "event", event, "err", err)
		return false
	}
	if out.ID == 0 || out.ConversationID == 0 {
		log.WarnContext(ctx, "消息事件缺少必要标识，已丢弃", "event", event)
		return false
	}
	return true
}
