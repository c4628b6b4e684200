package handler

import (
	"Quayside/internal/pkg/response"
	"Quayside/internal/service"
	"Quayside/internal/store"
	"strconv"

	"github.com/gin-gonic/gin"
)

// StateHandler 本地 API 的只读口：UI 层读取存储快照
type StateHandler struct {
	store *store.ConversationStore
}

func NewStateHandler(st *store.ConversationStore) *StateHandler {
	return &StateHandler{store: st}
}

// GetConversationList 会话列表快照
func (s *StateHandler) GetConversationList(c *gin.Context) {
	response.Success(c, s.store.Conversations())
}

// GetMessages 某会话的消息快照
func (s *StateHandler) GetMessages(c *gin.Context) {
	convID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 64)
	if err != nil || convID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	response.Success(c, s.store.Messages(convID))
}

// GetTypingUsers 某会话正在输入的用户
func (s *StateHandler) GetTypingUsers(c *gin.Context) {
	convID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 64)
	if err != nil || convID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	response.Success(c, s.store.TypingUsers(convID))
}

// GetUnread 总未读数，永远是各会话未读数之和
func (s *StateHandler) GetUnread(c *gin.Context) {
	response.Success(c, gin.H{"total": s.store.TotalUnread()})
}
