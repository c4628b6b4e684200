package service

import (
	"Quayside/internal/client/dto"
	"Quayside/internal/model"
	"Quayside/internal/store"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

const testLocalUserID uint64 = 10

// fakePlatformAPI 平台 REST 接口桩实现
type fakePlatformAPI struct {
	mu sync.Mutex

	conversations []*dto.ConversationDTO
	history       map[uint64][]*dto.MessageDTO

	listErr    error
	historyErr error
	sendErr    error
	sendResp   *dto.MessageDTO
	directResp *dto.CreateDirectResp
	directErr  error

	// beforeSendReturn 模拟发送响应返回前的并发事件（例如推送先到）
	beforeSendReturn func()

	listCalls int
	markReads [][2]uint64
}

func (f *fakePlatformAPI) ListConversations(ctx context.Context) ([]*dto.ConversationDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.conversations, nil
}

func (f *fakePlatformAPI) ListMessages(ctx context.Context, convID uint64) ([]*dto.MessageDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history[convID], nil
}

func (f *fakePlatformAPI) SendMessage(ctx context.Context, convID uint64, req *dto.SendMessageReq) (*dto.MessageDTO, error) {
	if f.beforeSendReturn != nil {
		f.beforeSendReturn()
	}
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return f.sendResp, nil
}

func (f *fakePlatformAPI) MarkRead(ctx context.Context, convID, lastMessageID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markReads = append(f.markReads, [2]uint64{convID, lastMessageID})
	return nil
}

func (f *fakePlatformAPI) CreateDirect(ctx context.Context, otherUserID uint64) (*dto.CreateDirectResp, error) {
	if f.directErr != nil {
		return nil, f.directErr
	}
	return f.directResp, nil
}

// fakeChannel 推送通道桩实现：测试直接向 events 注入帧
type fakeChannel struct {
	events chan *dto.PushFrame

	mu      sync.Mutex
	sent    []*dto.PushFrame
	sendErr error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{events: make(chan *dto.PushFrame, 64)}
}

func (f *fakeChannel) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeChannel) Send(ctx context.Context, frame *dto.PushFrame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, frame)
	return nil
}

func (f *fakeChannel) Events() <-chan *dto.PushFrame {
	return f.events
}

func (f *fakeChannel) sentEvents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := make([]string, 0, len(f.sent))
	for _, frame := range f.sent {
		events = append(events, frame.Event)
	}
	return events
}

func testStore(t *testing.T, convIDs ...uint64) *store.ConversationStore {
	t.Helper()
	s := store.NewConversationStore(testLocalUserID)
	for _, id := range convIDs {
		s.UpsertConversation(&model.Conversation{
			ID:            id,
			Type:          model.ConvTypeDirect,
			Title:         "conv",
			LastMessageAt: time.Unix(int64(id), 0),
		})
	}
	return s
}

func completeConvDTO(id uint64) *dto.ConversationDTO {
	return &dto.ConversationDTO{
		ConversationID: id,
		Type:           model.ConvTypeDirect,
		Title:          "conv",
		Participants: []dto.ParticipantDTO{
			{UserID: testLocalUserID, Username: "me"},
			{UserID: 2, Username: "peer"},
		},
		LastMsgContent: "hi",
		LastMsgType:    1,
		LastSenderID:   2,
		LastMessageAt:  time.Unix(int64(id), 0),
	}
}

func pushFrame(t *testing.T, event string, payload interface{}) *dto.PushFrame {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &dto.PushFrame{Event: event, Data: data}
}
