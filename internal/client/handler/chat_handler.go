package handler

import (
	"Quayside/internal/client/dto"
	"Quayside/internal/pkg/response"
	"Quayside/internal/pkg/util"
	"Quayside/internal/service"
	"Quayside/internal/store"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ChatHandler 本地 API 的写入口：UI 层的动作全部经此进入同步核心
type ChatHandler struct {
	syncService service.SyncService
	outbox      service.OutboxService
	presence    service.PresenceService
	store       *store.ConversationStore
}

func NewChatHandler(sync service.SyncService, outbox service.OutboxService, presence service.PresenceService, st *store.ConversationStore) *ChatHandler {
	return &ChatHandler{
		syncService: sync,
		outbox:      outbox,
		presence:    presence,
		store:       st,
	}
}

// SendMessage 发送消息接口
func (s *ChatHandler) SendMessage(c *gin.Context) {
	convID, ok := convParam(c)
	if !ok {
		return
	}

	var req dto.SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	msg, err := s.outbox.Send(c.Request.Context(), convID, &req)
	if err != nil {
		// 失败时把草稿内容一并带回，UI 据此恢复输入框
		if msg != nil {
			response.Fail(c, service.ErrorMap[err], msg.Content)
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, msg)
}

// MarkAsRead 标记已读接口
func (s *ChatHandler) MarkAsRead(c *gin.Context) {
	convID, ok := convParam(c)
	if !ok {
		return
	}

	cleared, err := s.outbox.MarkRead(c.Request.Context(), convID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": cleared})
}

// OpenConversation 打开会话视图：订阅、拉历史、置活跃、清未读
func (s *ChatHandler) OpenConversation(c *gin.Context) {
	convID, ok := convParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if err := s.syncService.EnsureConversation(ctx, convID); err != nil {
		response.Error(c, err)
		return
	}
	_ = s.presence.Join(ctx, convID)

	if err := s.syncService.LoadHistory(ctx, convID); err != nil {
		response.Error(c, err)
		return
	}

	s.store.SetActiveConversation(convID)
	cleared, err := s.outbox.MarkRead(ctx, convID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": cleared})
}

// CloseConversation 关闭会话视图，基线房间订阅保持不变
func (s *ChatHandler) CloseConversation(c *gin.Context) {
	convID, ok := convParam(c)
	if !ok {
		return
	}
	if s.store.ActiveConversation() == convID {
		s.store.SetActiveConversation(0)
	}
	response.Success(c, nil)
}

// LeaveConversation 显式退订某会话的推送房间
//
// 关闭视图不退订（基线订阅保留），这里供 UI 层在隐藏、
// 归档会话等场景下主动取消订阅。
func (s *ChatHandler) LeaveConversation(c *gin.Context) {
	convID, ok := convParam(c)
	if !ok {
		return
	}
	if err := s.presence.Leave(c.Request.Context(), convID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// RefreshConversations 手动触发会话列表全量刷新
func (s *ChatHandler) RefreshConversations(c *gin.Context) {
	if err := s.syncService.RefreshConversations(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// OpenDirect 发起单聊
func (s *ChatHandler) OpenDirect(c *gin.Context) {
	var req dto.CreateDirectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	convID, created, err := s.syncService.OpenDirect(c.Request.Context(), req.OtherUserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.CreateDirectResp{ConversationID: convID, Created: created})
}

// convParam 解析路径中的会话 ID
func convParam(c *gin.Context) (uint64, bool) {
	convID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 64)
	if err != nil || convID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return 0, false
	}
	return convID, true
}
