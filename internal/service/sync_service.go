package service

import (
	"Quayside/internal/client/dto"
	"Quayside/internal/model"
	"Quayside/internal/pkg/rest"
	"Quayside/internal/store"
	"context"
	log "log/slog"

	"golang.org/x/sync/singleflight"
)

// SyncService 历史同步服务接口定义
type SyncService interface {
	RefreshConversations(ctx context.Context) error
	LoadHistory(ctx context.Context, convID uint64) error
	EnsureConversation(ctx context.Context, convID uint64) error
	OpenDirect(ctx context.Context, otherUserID uint64) (uint64, bool, error)
}

type syncServiceImpl struct {
	api      rest.PlatformAPI
	store    *store.ConversationStore
	presence PresenceService
	group    singleflight.Group
}

func NewSyncService(api rest.PlatformAPI, st *store.ConversationStore, presence PresenceService) SyncService {
	return &syncServiceImpl{
		api:      api,
		store:    st,
		presence: presence,
	}
}

// RefreshConversations 全量拉取会话列表
//
// 拉取失败时不触碰已有状态；缺失标题/成员/末条预览的条目视为
// 脏数据过滤掉；刷新成功后补齐新会话的房间订阅。
func (s *syncServiceImpl) RefreshConversations(ctx context.Context) error {
	list, err := s.api.ListConversations(ctx)
	if err != nil {
		log.ErrorContext(ctx, "会话列表拉取失败", "err", err)
		return ErrListRefreshFailed
	}

	conversations := make([]*model.Conversation, 0, len(list))
	for _, d := range list {
		if !completeConversation(d) {
			log.DebugContext(ctx, "过滤不完整的会话条目", "conversationID", d.ConversationID)
			continue
		}
		conversations = append(conversations, d.ToConversation())
	}

	s.store.PutConversations(conversations)

	if s.presence != nil {
		s.presence.JoinKnown(ctx)
	}
	return nil
}

// LoadHistory 拉取某会话的历史消息并合并进存储
//
// 仍在发送中的乐观消息由存储层负责保留，这里不做特殊处理。
func (s *syncServiceImpl) LoadHistory(ctx context.Context, convID uint64) error {
	list, err := s.api.ListMessages(ctx, convID)
	if err != nil {
		log.ErrorContext(ctx, "历史消息拉取失败", "conversationID", convID, "err", err)
		return ErrHistoryFetchFailed
	}

	msgs := make([]*model.Message, 0, len(list))
	for _, d := range list {
		m := d.ToMessage()
		m.ConversationID = convID
		msgs = append(msgs, m)
	}
	s.store.ReplaceMessages(convID, msgs)
	return nil
}

// EnsureConversation 未知会话发现：触发一次列表刷新
//
// 推送事件可能先于会话列表到达（例如他人刚发起的新会话），
// singleflight 保证并发发现只产生一次刷新请求。
func (s *syncServiceImpl) EnsureConversation(ctx context.Context, convID uint64) error {
	if s.store.HasConversation(convID) {
		return nil
	}

	_, err, _ := s.group.Do("refresh-conversations", func() (interface{}, error) {
		return nil, s.RefreshConversations(ctx)
	})
	if err != nil {
		return err
	}

	if !s.store.HasConversation(convID) {
		return ErrConversationNotFound
	}
	return nil
}

// OpenDirect 发起（或定位已有的）单聊会话
func (s *syncServiceImpl) OpenDirect(ctx context.Context, otherUserID uint64) (uint64, bool, error) {
	res, err := s.api.CreateDirect(ctx, otherUserID)
	if err != nil {
		log.ErrorContext(ctx, "发起单聊失败", "otherUserID", otherUserID, "err", err)
		return 0, false, ErrDirectOpenFailed
	}

	if err := s.EnsureConversation(ctx, res.ConversationID); err != nil {
		return res.ConversationID, res.Created, err
	}
	return res.ConversationID, res.Created, nil
}

// completeConversation 判断会话条目是否完整可用
func completeConversation(d *dto.ConversationDTO) bool {
	if d.Title == "" || len(d.Participants) == 0 {
		return false
	}
	if d.LastMsgContent == "" && d.LastMessageAt.IsZero() {
		return false
	}
	return true
}
