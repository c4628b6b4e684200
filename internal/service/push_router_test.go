package service

import (
	"Quayside/internal/client/dto"
	"Quayside/internal/model"
	"Quayside/internal/pkg/consts"
	"Quayside/internal/store"
	"context"
	"testing"
	"time"
)

// runRouter 投递一组帧并等待路由消费完毕
func runRouter(t *testing.T, st *store.ConversationStore, api *fakePlatformAPI, ch *fakeChannel, frames ...*dto.PushFrame) {
	t.Helper()
	presence := NewPresenceService(ch, st)
	sync := NewSyncService(api, st, presence)
	router := NewPushRouter(st, sync, presence, ch)

	for _, frame := range frames {
		ch.events <- frame
	}
	close(ch.events)

	if err := router.Run(context.Background()); err != nil {
		t.Fatalf("router run: %v", err)
	}
}

func msgDTO(id, convID, senderID uint64, at time.Time) *dto.MessageDTO {
	return &dto.MessageDTO{
		ID:             id,
		ConversationID: convID,
		SenderID:       senderID,
		MsgType:        1,
		Content:        "m",
		CreatedAt:      at,
	}
}

func TestRouterNewMessageSideEffects(t *testing.T) {
	st := testStore(t, 1, 2)
	ch := newFakeChannel()

	runRouter(t, st, &fakePlatformAPI{}, ch,
		pushFrame(t, consts.EventMessageNew, msgDTO(101, 1, 2, time.Unix(5000, 0))),
	)

	conv, _ := st.Conversation(1)
	if conv.UnreadCount != 1 {
		t.Fatalf("unread = %d, want 1", conv.UnreadCount)
	}
	if conv.LastMsgContent != "m" || conv.LastSenderID != 2 {
		t.Fatalf("summary not updated: %+v", conv)
	}
	// 收新消息的会话要排到列表首位
	if ids := st.ConversationIDs(); ids[0] != 1 {
		t.Fatalf("conversation order = %v, want conv 1 first", ids)
	}
}

func TestRouterNewMessageNoUnreadForOwnOrActive(t *testing.T) {
	st := testStore(t, 1, 2)
	st.SetActiveConversation(2)
	ch := newFakeChannel()

	runRouter(t, st, &fakePlatformAPI{}, ch,
		// 本人消息（来自其他端）不计未读
		pushFrame(t, consts.EventMessageNew, msgDTO(101, 1, testLocalUserID, time.Unix(5000, 0))),
		// 当前打开的会话不计未读
		pushFrame(t, consts.EventMessageNew, msgDTO(102, 2, 3, time.Unix(5001, 0))),
	)

	if got := st.TotalUnread(); got != 0 {
		t.Fatalf("total unread = %d, want 0", got)
	}
	if len(st.Messages(1)) != 1 || len(st.Messages(2)) != 1 {
		t.Fatal("messages should still be stored")
	}
}

func TestRouterOutOfOrderDelivery(t *testing.T) {
	st := testStore(t, 1)
	base := time.Unix(1000, 0)
	st.UpsertMessage(1, &model.Message{ID: 101, ConversationID: 1, SenderID: 2, CreatedAt: base.Add(1 * time.Second)})
	st.UpsertMessage(1, &model.Message{ID: 104, ConversationID: 1, SenderID: 2, CreatedAt: base.Add(4 * time.Second)})

	ch := newFakeChannel()
	runRouter(t, st, &fakePlatformAPI{}, ch,
		pushFrame(t, consts.EventMessageNew, msgDTO(102, 1, 2, base.Add(2*time.Second))),
		pushFrame(t, consts.EventMessageNew, msgDTO(103, 1, 2, base.Add(3*time.Second))),
	)

	msgs := st.Messages(1)
	want := []uint64{101, 102, 103, 104}
	if len(msgs) != len(want) {
		t.Fatalf("message count = %d, want %d", len(msgs), len(want))
	}
	for i, m := range msgs {
		if m.ID != want[i] {
			t.Fatalf("order = %+v, want %v", msgs, want)
		}
	}
}

func TestRouterMessageEditedAndDeleted(t *testing.T) {
	st := testStore(t, 1)
	at := time.Unix(1000, 0)
	st.UpsertMessage(1, &model.Message{ID: 101, ConversationID: 1, SenderID: 2, Content: "old", CreatedAt: at})
	st.UpsertMessage(1, &model.Message{ID: 102, ConversationID: 1, SenderID: 2, CreatedAt: at.Add(time.Second)})

	edited := msgDTO(101, 1, 2, at)
	edited.Content = "new"
	edited.Edited = true

	ch := newFakeChannel()
	runRouter(t, st, &fakePlatformAPI{}, ch,
		pushFrame(t, consts.EventMessageEdited, edited),
		pushFrame(t, consts.EventMessageDeleted, &dto.MessageDeletedPush{ConversationID: 1, MessageID: 102}),
	)

	msgs := st.Messages(1)
	if len(msgs) != 1 {
		t.Fatalf("message count = %d, want 1", len(msgs))
	}
	if msgs[0].Content != "new" || !msgs[0].Edited {
		t.Fatalf("edit not applied: %+v", msgs[0])
	}
}

func TestRouterTypingEvents(t *testing.T) {
	st := testStore(t, 1)
	ch := newFakeChannel()

	runRouter(t, st, &fakePlatformAPI{}, ch,
		pushFrame(t, consts.EventUserTyping, &dto.TypingPush{ConversationID: 1, UserID: 2}),
		// 本人的输入事件忽略
		pushFrame(t, consts.EventUserTyping, &dto.TypingPush{ConversationID: 1, UserID: testLocalUserID}),
	)

	if got := st.TypingUsers(1); len(got) != 1 || got[0] != 2 {
		t.Fatalf("typing users = %v, want [2]", got)
	}

	ch2 := newFakeChannel()
	runRouter(t, st, &fakePlatformAPI{}, ch2,
		pushFrame(t, consts.EventUserStopTyping, &dto.TypingPush{ConversationID: 1, UserID: 2}),
	)
	if got := st.TypingUsers(1); len(got) != 0 {
		t.Fatalf("typing users after stop = %v, want empty", got)
	}
}

func TestRouterReadReceipt(t *testing.T) {
	st := testStore(t, 1)
	st.IncrementUnread(1)
	ch := newFakeChannel()

	runRouter(t, st, &fakePlatformAPI{}, ch,
		pushFrame(t, consts.EventMessagesRead, &dto.ReadReceiptPush{ConversationID: 1, UserID: testLocalUserID, LastMessageID: 101}),
	)

	conv, _ := st.Conversation(1)
	if conv.UnreadCount != 0 {
		t.Fatalf("unread = %d, want 0 after own-session receipt", conv.UnreadCount)
	}
}

func TestRouterReactions(t *testing.T) {
	st := testStore(t, 1)
	st.UpsertMessage(1, &model.Message{ID: 101, ConversationID: 1, SenderID: 2, CreatedAt: time.Now()})
	ch := newFakeChannel()

	runRouter(t, st, &fakePlatformAPI{}, ch,
		pushFrame(t, consts.EventReactionAdd, &dto.ReactionPush{ConversationID: 1, MessageID: 101, UserID: 2, Emoji: "👍"}),
		pushFrame(t, consts.EventReactionAdd, &dto.ReactionPush{ConversationID: 1, MessageID: 101, UserID: 2, Emoji: "👍"}),
		pushFrame(t, consts.EventReactionRemove, &dto.ReactionPush{ConversationID: 1, MessageID: 101, UserID: 3, Emoji: "🔥"}),
	)

	if n := len(st.Messages(1)[0].Reactions); n != 1 {
		t.Fatalf("reaction count = %d, want 1", n)
	}
}

func TestRouterUnknownConversationDiscovery(t *testing.T) {
	st := testStore(t)
	api := &fakePlatformAPI{conversations: []*dto.ConversationDTO{completeConvDTO(7)}}
	ch := newFakeChannel()

	runRouter(t, st, api, ch,
		pushFrame(t, consts.EventConvNewMessage, &dto.ConvNewMessagePush{ConversationID: 7}),
	)

	if !st.HasConversation(7) {
		t.Fatal("discovery event should trigger a list refresh that lands conversation 7")
	}
}

func TestRouterNewMessageInUnknownConversation(t *testing.T) {
	st := testStore(t)
	api := &fakePlatformAPI{conversations: []*dto.ConversationDTO{completeConvDTO(8)}}
	ch := newFakeChannel()

	runRouter(t, st, api, ch,
		pushFrame(t, consts.EventMessageNew, msgDTO(201, 8, 2, time.Unix(5000, 0))),
	)

	if !st.HasConversation(8) {
		t.Fatal("unknown-conversation message should trigger a refresh")
	}
	if len(st.Messages(8)) != 1 {
		t.Fatal("the triggering message must not be dropped after refresh")
	}
	conv, _ := st.Conversation(8)
	if conv.UnreadCount != 1 {
		t.Fatalf("unread = %d, want 1", conv.UnreadCount)
	}
}

func TestRouterConnectRejoinsKnownConversations(t *testing.T) {
	st := testStore(t, 1, 2)
	ch := newFakeChannel()

	runRouter(t, st, &fakePlatformAPI{}, ch,
		&dto.PushFrame{Event: consts.EventConnect},
	)

	events := ch.sentEvents()
	if len(events) != 2 {
		t.Fatalf("sent frames = %v, want 2 joins", events)
	}
	for _, e := range events {
		if e != consts.EventJoinConversation {
			t.Fatalf("sent event = %q, want %q", e, consts.EventJoinConversation)
		}
	}
}

func TestRouterIgnoresUnknownAndMalformedEvents(t *testing.T) {
	st := testStore(t, 1)
	ch := newFakeChannel()

	runRouter(t, st, &fakePlatformAPI{}, ch,
		&dto.PushFrame{Event: "something:else"},
		&dto.PushFrame{Event: consts.EventMessageNew, Data: []byte(`{"id":"not-a-number"}`)},
		&dto.PushFrame{Event: consts.EventMessagesRead, Data: []byte(`{}`)},
	)

	if len(st.Messages(1)) != 0 || st.TotalUnread() != 0 {
		t.Fatal("unroutable events must leave the store untouched")
	}
}
