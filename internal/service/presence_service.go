package service

import (
	"Quayside/internal/client/dto"
	"Quayside/internal/pkg/consts"
	"Quayside/internal/pkg/pushchan"
	"Quayside/internal/store"
	"context"
	"errors"
	log "log/slog"
	"sync"

	"github.com/goccy/go-json"
)

// PresenceService 推送通道上的房间订阅管理
//
// 只有本服务向通道写出 join/leave 帧。基线订阅覆盖存储中
// 所有已知会话；打开/关闭具体会话视图是增量操作，不影响基线。
type PresenceService interface {
	JoinKnown(ctx context.Context)
	Join(ctx context.Context, convID uint64) error
	Leave(ctx context.Context, convID uint64) error
	Rejoin(ctx context.Context)
}

type presenceServiceImpl struct {
	channel pushchan.Channel
	store   *store.ConversationStore

	mu     sync.Mutex
	joined map[uint64]struct{}
}

func NewPresenceService(channel pushchan.Channel, st *store.ConversationStore) PresenceService {
	return &presenceServiceImpl{
		channel: channel,
		store:   st,
		joined:  make(map[uint64]struct{}),
	}
}

// JoinKnown 为存储中尚未订阅的会话补发 join
func (s *presenceServiceImpl) JoinKnown(ctx context.Context) {
	for _, convID := range s.store.ConversationIDs() {
		if err := s.Join(ctx, convID); err != nil {
			log.WarnContext(ctx, "房间订阅失败", "conversationID", convID, "err", err)
		}
	}
}

// Join 声明对某会话的订阅，已订阅时为空操作
func (s *presenceServiceImpl) Join(ctx context.Context, convID uint64) error {
	s.mu.Lock()
	if _, ok := s.joined[convID]; ok {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.announce(ctx, consts.EventJoinConversation, &dto.JoinConversationPush{
		ConversationID: convID,
		UserID:         s.store.LocalUserID(),
	}); err != nil {
		return err
	}

	s.mu.Lock()
	s.joined[convID] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Leave 取消对某会话的订阅
func (s *presenceServiceImpl) Leave(ctx context.Context, convID uint64) error {
	s.mu.Lock()
	if _, ok := s.joined[convID]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.joined, convID)
	s.mu.Unlock()

	return s.announce(ctx, consts.EventLeaveConversation, &dto.LeaveConversationPush{
		ConversationID: convID,
	})
}

// Rejoin 重连后重建订阅：清空本地记录并对全部已知会话重发 join
//
// 瞬时断线不能让既有会话悄悄停止投递。
func (s *presenceServiceImpl) Rejoin(ctx context.Context) {
	s.mu.Lock()
	s.joined = make(map[uint64]struct{})
	s.mu.Unlock()

	s.JoinKnown(ctx)
}

func (s *presenceServiceImpl) announce(ctx context.Context, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := s.channel.Send(ctx, &dto.PushFrame{Event: event, Data: data}); err != nil {
		if errors.Is(err, pushchan.ErrNotConnected) {
			return ErrChannelNotConnected
		}
		return err
	}
	return nil
}
