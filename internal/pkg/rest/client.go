package rest

import (
	"Quayside/internal/client/config"
	"Quayside/internal/client/dto"
	"Quayside/internal/pkg/consts"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// PlatformAPI 平台后端请求/响应接口
//
// 历史拉取与发送流水线只依赖这个接口，测试中以桩实现替换。
type PlatformAPI interface {
	ListConversations(ctx context.Context) ([]*dto.ConversationDTO, error)
	ListMessages(ctx context.Context, convID uint64) ([]*dto.MessageDTO, error)
	SendMessage(ctx context.Context, convID uint64, req *dto.SendMessageReq) (*dto.MessageDTO, error)
	MarkRead(ctx context.Context, convID, lastMessageID uint64) error
	CreateDirect(ctx context.Context, otherUserID uint64) (*dto.CreateDirectResp, error)
}

type platformClient struct {
	http *resty.Client
}

// NewPlatformClient 构造带鉴权的 REST 客户端
func NewPlatformClient(cfg *config.PlatformConfig) PlatformAPI {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if cfg.TimeoutSec <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetAuthToken(cfg.Token).
		SetHeader("Content-Type", "application/json")

	return &platformClient{http: client}
}

func (s *platformClient) ListConversations(ctx context.Context) ([]*dto.ConversationDTO, error) {
	var res []*dto.ConversationDTO
	if err := s.call(ctx, http.MethodGet, "/conversations", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *platformClient) ListMessages(ctx context.Context, convID uint64) ([]*dto.MessageDTO, error) {
	var res []*dto.MessageDTO
	path := fmt.Sprintf("/conversations/%d/messages?limit=%d", convID, consts.DefaultHistoryPageSize)
	if err := s.call(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *platformClient) SendMessage(ctx context.Context, convID uint64, req *dto.SendMessageReq) (*dto.MessageDTO, error) {
	var res dto.MessageDTO
	path := fmt.Sprintf("/conversations/%d/messages", convID)
	if err := s.call(ctx, http.MethodPost, path, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *platformClient) MarkRead(ctx context.Context, convID, lastMessageID uint64) error {
	path := fmt.Sprintf("/conversations/%d/read", convID)
	return s.call(ctx, http.MethodPut, path, &dto.MarkAsReadReq{LastMessageID: lastMessageID}, nil)
}

func (s *platformClient) CreateDirect(ctx context.Context, otherUserID uint64) (*dto.CreateDirectResp, error) {
	var res dto.CreateDirectResp
	if err := s.call(ctx, http.MethodPost, "/conversations/direct", &dto.CreateDirectReq{OtherUserID: otherUserID}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// call 发起请求并解开统一响应信封
func (s *platformClient) call(ctx context.Context, method, path string, body, out interface{}) error {
	req := s.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return errors.Wrapf(err, "平台接口请求失败: %s %s", method, path)
	}
	if resp.IsError() {
		return errors.Errorf("平台接口返回 HTTP %d: %s %s", resp.StatusCode(), method, path)
	}

	var envelope struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return errors.Wrapf(err, "平台响应解析失败: %s %s", method, path)
	}
	if envelope.Code != 200 {
		return errors.Errorf("平台接口业务失败 code=%d: %s", envelope.Code, envelope.Message)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return errors.Wrapf(err, "平台响应数据解析失败: %s %s", method, path)
		}
	}
	return nil
}
