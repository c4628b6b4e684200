package rest

import (
	"Quayside/internal/client/config"
	"Quayside/internal/client/dto"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func newTestClient(srv *httptest.Server) PlatformAPI {
	return NewPlatformClient(&config.PlatformConfig{
		BaseURL: srv.URL,
		Token:   "test-token",
	})
}

func writeEnvelope(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    code,
		"message": "",
		"data":    data,
	})
}

func TestListConversationsUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/conversations" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("auth header = %q", got)
		}
		writeEnvelope(w, 200, []map[string]interface{}{
			{"conversation_id": 1, "type": 1, "title": "alice"},
			{"conversation_id": 2, "type": 2, "title": "team"},
		})
	}))
	defer srv.Close()

	convs, err := newTestClient(srv).ListConversations(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(convs) != 2 || convs[0].ConversationID != 1 || convs[1].Title != "team" {
		t.Fatalf("conversations = %+v", convs)
	}
}

func TestSendMessagePostsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/conversations/7/messages" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req dto.SendMessageReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.Content != "hello" || req.MsgType != 1 {
			t.Errorf("request body = %+v", req)
		}
		writeEnvelope(w, 200, map[string]interface{}{
			"id": 900, "conversation_id": 7, "content": "hello",
		})
	}))
	defer srv.Close()

	msg, err := newTestClient(srv).SendMessage(context.Background(), 7, &dto.SendMessageReq{Content: "hello", MsgType: 1})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.ID != 900 || msg.ConversationID != 7 {
		t.Fatalf("message = %+v", msg)
	}
}

func TestMarkReadPutsLastMessageID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/conversations/7/read" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req dto.MarkAsReadReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.LastMessageID != 105 {
			t.Errorf("last message id = %d, want 105", req.LastMessageID)
		}
		writeEnvelope(w, 200, nil)
	}))
	defer srv.Close()

	if err := newTestClient(srv).MarkRead(context.Background(), 7, 105); err != nil {
		t.Fatalf("mark read: %v", err)
	}
}

func TestBusinessCodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 404, nil)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ListConversations(context.Background())
	if err == nil || !strings.Contains(err.Error(), "code=404") {
		t.Fatalf("err = %v, want business code failure", err)
	}
}

func TestHTTPStatusFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ListConversations(context.Background())
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("err = %v, want HTTP status failure", err)
	}
}
