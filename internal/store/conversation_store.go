package store

import (
	"Quayside/internal/model"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/jinzhu/copier"
)

// ConversationStore 会话状态的唯一权威内存存储
//
// 三个写入方（历史拉取、乐观发送、推送路由）通过互斥锁串行化，
// 任意两次变更不会交错；UI 层只读快照。
type ConversationStore struct {
	mu sync.Mutex

	localUserID  uint64
	activeConvID uint64

	conversations map[uint64]*model.Conversation
	order         []uint64 // 会话列表展示顺序，按最近消息时间倒序
	messages      map[uint64][]*model.Message
	typing        map[uint64]map[uint64]time.Time
}

func NewConversationStore(localUserID uint64) *ConversationStore {
	return &ConversationStore{
		localUserID:   localUserID,
		conversations: make(map[uint64]*model.Conversation),
		messages:      make(map[uint64][]*model.Message),
		typing:        make(map[uint64]map[uint64]time.Time),
	}
}

func (s *ConversationStore) LocalUserID() uint64 {
	return s.localUserID
}

// SetActiveConversation 记录当前打开的会话，0 表示未打开任何会话
func (s *ConversationStore) SetActiveConversation(convID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeConvID = convID
}

func (s *ConversationStore) ActiveConversation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeConvID
}

func (s *ConversationStore) HasConversation(convID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.conversations[convID]
	return ok
}

// PutConversations 全量刷新会话列表
//
// 服务端返回的未读数为准；本地已有但本次未返回的会话保留不删，
// 会话删除是服务端的职责。
func (s *ConversationStore) PutConversations(list []*model.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, conv := range list {
		c := *conv
		s.conversations[c.ID] = &c
	}
	s.rebuildOrder()
}

// UpsertConversation 插入或整体替换单个会话，返回是否为新会话
func (s *ConversationStore) UpsertConversation(conv *model.Conversation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.conversations[conv.ID]
	c := *conv
	s.conversations[c.ID] = &c
	s.rebuildOrder()
	return !exists
}

// UpdateConversationSummary 增量合并会话摘要，零值字段不覆盖现有数据
func (s *ConversationStore) UpdateConversationSummary(summary *model.ConversationSummary) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[summary.ConversationID]
	if !ok {
		return false
	}
	_ = copier.CopyWithOption(conv, summary, copier.Option{IgnoreEmpty: true})
	s.rebuildOrder()
	return true
}

// ReplaceMessages 历史拉取后的全量合并
//
// 仍处于 Pending 状态的乐观消息不能被历史结果冲掉：
// 服务端尚未确认它们，直接覆盖会让发送中的消息从界面上消失。
func (s *ConversationStore) ReplaceMessages(convID uint64, msgs []*model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]*model.Message, 0, len(msgs))
	seen := make(map[uint64]struct{}, len(msgs))
	for _, m := range msgs {
		if m.ID == 0 {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		c := *m
		c.State = model.MessageConfirmed
		merged = append(merged, &c)
	}

	for _, m := range s.messages[convID] {
		if m.State == model.MessagePending {
			merged = append(merged, m)
		}
	}

	sortMessages(merged)
	s.messages[convID] = merged
}

// UpsertMessage 按服务端 ID 插入或原地替换
//
// 返回 false 表示会话未知，调用方应触发会话列表刷新；
// 消息级操作本身永不报错。
func (s *ConversationStore) UpsertMessage(convID uint64, msg *model.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[convID]; !ok {
		return false
	}

	c := *msg
	c.State = model.MessageConfirmed
	list := s.messages[convID]
	for i, m := range list {
		if m.ID != 0 && m.ID == c.ID {
			resort := !m.CreatedAt.Equal(c.CreatedAt)
			list[i] = &c
			if resort {
				sortMessages(list)
			}
			return true
		}
	}

	list = append(list, &c)
	sortMessages(list)
	s.messages[convID] = list
	return true
}

// RemoveMessage 删除消息，ID 不存在时为空操作
func (s *ConversationStore) RemoveMessage(convID uint64, msgID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.messages[convID]
	for i, m := range list {
		if m.ID == msgID {
			s.messages[convID] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// InsertPending 写入乐观占位消息，发送方立即可见
func (s *ConversationStore) InsertPending(msg *model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *msg
	c.State = model.MessagePending
	list := append(s.messages[c.ConversationID], &c)
	sortMessages(list)
	s.messages[c.ConversationID] = list
}

// ReconcilePending 用服务端确认记录替换占位消息
//
// 若确认 ID 已存在（推送先于发送响应到达），占位消息直接丢弃，
// 不会产生重复记录。
func (s *ConversationStore) ReconcilePending(convID uint64, clientID string, confirmed *model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dropPendingLocked(convID, clientID)

	c := *confirmed
	c.State = model.MessageConfirmed
	c.ClientID = clientID
	list := s.messages[convID]
	for i, m := range list {
		if m.ID != 0 && m.ID == c.ID {
			list[i] = &c
			sortMessages(list)
			return
		}
	}
	list = append(list, &c)
	sortMessages(list)
	s.messages[convID] = list
}

// RemovePending 发送失败回滚，返回占位消息以便恢复草稿
func (s *ConversationStore) RemovePending(convID uint64, clientID string) *model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.messages[convID] {
		if m.State == model.MessagePending && m.ClientID == clientID {
			draft := *m
			s.dropPendingLocked(convID, clientID)
			return &draft
		}
	}
	return nil
}

func (s *ConversationStore) dropPendingLocked(convID uint64, clientID string) {
	list := s.messages[convID]
	for i, m := range list {
		if m.State == model.MessagePending && m.ClientID == clientID {
			s.messages[convID] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// AddReaction 集合语义：重复添加为空操作
func (s *ConversationStore) AddReaction(convID, msgID, userID uint64, emoji string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.findMessageLocked(convID, msgID)
	if msg == nil {
		return
	}
	for _, r := range msg.Reactions {
		if r.UserID == userID && r.Emoji == emoji {
			return
		}
	}
	next := make([]model.Reaction, 0, len(msg.Reactions)+1)
	next = append(next, msg.Reactions...)
	next = append(next, model.Reaction{UserID: userID, Emoji: emoji})
	msg.Reactions = next
}

// RemoveReaction 集合语义：删除不存在的元组为空操作
func (s *ConversationStore) RemoveReaction(convID, msgID, userID uint64, emoji string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.findMessageLocked(convID, msgID)
	if msg == nil {
		return
	}
	for i, r := range msg.Reactions {
		if r.UserID == userID && r.Emoji == emoji {
			next := make([]model.Reaction, 0, len(msg.Reactions)-1)
			next = append(next, msg.Reactions[:i]...)
			next = append(next, msg.Reactions[i+1:]...)
			msg.Reactions = next
			return
		}
	}
}

// ApplyReadReceipt 处理已读回执
//
// 本人回执（来自本账号其他端）：清零该会话未读数。
// 对端回执：为本人发出的、ID 不大于 lastMsgID 的消息补挂回执记录（去重）。
func (s *ConversationStore) ApplyReadReceipt(convID, userID, lastMsgID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID == s.localUserID {
		if conv, ok := s.conversations[convID]; ok {
			conv.UnreadCount = 0
		}
		return
	}

	now := time.Now()
	for _, m := range s.messages[convID] {
		if m.SenderID != s.localUserID || m.ID == 0 || m.ID > lastMsgID {
			continue
		}
		dup := false
		for _, r := range m.Receipts {
			if r.UserID == userID {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		next := make([]model.Receipt, 0, len(m.Receipts)+1)
		next = append(next, m.Receipts...)
		next = append(next, model.Receipt{UserID: userID, Status: model.ReceiptRead, ReadAt: now})
		m.Receipts = next
	}
}

// MarkConversationRead 本地已读：清零未读数，返回清零前的值
func (s *ConversationStore) MarkConversationRead(convID uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[convID]
	if !ok {
		return 0
	}
	prev := conv.UnreadCount
	conv.UnreadCount = 0
	return prev
}

// IncrementUnread 未读数自增，仅推送路由的新消息分支调用
func (s *ConversationStore) IncrementUnread(convID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv, ok := s.conversations[convID]; ok {
		conv.UnreadCount++
	}
}

// TotalUnread 总未读数永远由各会话计数求和得出，不单独存储
func (s *ConversationStore) TotalUnread() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total uint64
	for _, conv := range s.conversations {
		total += conv.UnreadCount
	}
	return total
}

// SetTyping 记录 (用户, 会话) 正在输入及其时间戳
func (s *ConversationStore) SetTyping(convID, userID uint64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.typing[convID]
	if !ok {
		set = make(map[uint64]time.Time)
		s.typing[convID] = set
	}
	set[userID] = at
}

func (s *ConversationStore) ClearTyping(convID, userID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if set, ok := s.typing[convID]; ok {
		delete(set, userID)
	}
}

// SweepTyping 清理早于 cutoff 的输入状态，返回清理条数
func (s *ConversationStore) SweepTyping(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	swept := 0
	for _, set := range s.typing {
		for userID, at := range set {
			if at.Before(cutoff) {
				delete(set, userID)
				swept++
			}
		}
	}
	return swept
}

// TypingUsers 某会话当前正在输入的用户
func (s *ConversationStore) TypingUsers(convID uint64) []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.typing[convID]
	users := make([]uint64, 0, len(set))
	for userID := range set {
		users = append(users, userID)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}

// Conversation 单个会话快照
func (s *ConversationStore) Conversation(convID uint64) (model.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[convID]
	if !ok {
		return model.Conversation{}, false
	}
	return *conv, true
}

// Conversations 会话列表快照，按最近消息时间倒序
func (s *ConversationStore) Conversations() []model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]model.Conversation, 0, len(s.order))
	for _, id := range s.order {
		res = append(res, *s.conversations[id])
	}
	return res
}

// ConversationIDs 已知会话 ID，用于重连后的房间重订阅
func (s *ConversationStore) ConversationIDs() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uint64, 0, len(s.order))
	ids = append(ids, s.order...)
	return ids
}

// Messages 某会话的消息快照，升序
func (s *ConversationStore) Messages(convID uint64) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.messages[convID]
	res := make([]model.Message, 0, len(list))
	for _, m := range list {
		res = append(res, *m)
	}
	return res
}

func (s *ConversationStore) findMessageLocked(convID, msgID uint64) *model.Message {
	for _, m := range s.messages[convID] {
		if m.ID != 0 && m.ID == msgID {
			return m
		}
	}
	return nil
}

func (s *ConversationStore) rebuildOrder() {
	ids := make([]uint64, 0, len(s.conversations))
	for id := range s.conversations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.conversations[ids[i]], s.conversations[ids[j]]
		if !a.LastMessageAt.Equal(b.LastMessageAt) {
			return a.LastMessageAt.After(b.LastMessageAt)
		}
		return a.ID < b.ID
	})
	s.order = ids
}

// sortMessages 升序排序：创建时间优先，同刻按服务端 ID，
// Pending 消息（无服务端 ID）排在同刻确认消息之后
func sortMessages(list []*model.Message) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		aid, bid := a.ID, b.ID
		if aid == 0 {
			aid = math.MaxUint64
		}
		if bid == 0 {
			bid = math.MaxUint64
		}
		if aid != bid {
			return aid < bid
		}
		return a.ClientID < b.ClientID
	})
}
