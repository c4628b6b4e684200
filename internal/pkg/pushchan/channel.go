package pushchan

import (
	"Quayside/internal/client/config"
	"Quayside/internal/client/dto"
	"Quayside/internal/pkg/consts"
	"context"
	"errors"
	log "log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// ErrNotConnected 推送通道当前没有可用连接
var ErrNotConnected = errors.New("推送通道未连接")

// Channel 推送通道抽象
//
// 入站事件统一经 Events 通道消费（仅推送路由读取），
// 出站帧统一经 Send 写入（仅在线状态管理调用）。
type Channel interface {
	Run(ctx context.Context) error
	Send(ctx context.Context, frame *dto.PushFrame) error
	Events() <-chan *dto.PushFrame
}

// Manager 基于 Websocket 的推送通道实现
//
// 显式构造、可注入，连接生命周期为 懒连接 → 断线指数退避重连，
// 每次会话建立都会向消费方注入一条合成 connect 事件，
// 供在线状态管理重新声明房间订阅。
type Manager struct {
	cfg   config.PushConfig
	token string

	events chan *dto.PushFrame

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewManager(cfg config.PushConfig, token string) *Manager {
	bufLen := cfg.EventBufferLength
	if bufLen <= 0 {
		bufLen = 256
	}
	return &Manager{
		cfg:    cfg,
		token:  token,
		events: make(chan *dto.PushFrame, bufLen),
	}
}

func (s *Manager) Events() <-chan *dto.PushFrame {
	return s.events
}

// Run 维持连接直至 ctx 取消
func (s *Manager) Run(ctx context.Context) error {
	defer close(s.events)

	backoff := s.baseBackoff()
	for {
		conn, err := s.dial(ctx)
		if err != nil {
			log.WarnContext(ctx, "推送通道连接失败", "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = s.nextBackoff(backoff)
			continue
		}
		backoff = s.baseBackoff()

		s.setConn(conn)
		log.InfoContext(ctx, "推送通道已建立")

		// ctx 取消时主动关闭连接，否则 readPump 会一直阻塞在读上
		watchDone := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = conn.Close()
			case <-watchDone:
			}
		}()

		// 合成 connect 事件：通知消费方重新声明房间订阅
		err = s.deliver(ctx, &dto.PushFrame{Event: consts.EventConnect})
		if err == nil {
			err = s.readPump(ctx, conn)
		}
		close(watchDone)
		s.teardown(conn)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WarnContext(ctx, "推送通道断开，准备重连", "err", err)
	}
}

// Send 写出一帧，未连接时立即报错（不排队，由调用方决定如何补偿）
func (s *Manager) Send(ctx context.Context, frame *dto.PushFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrNotConnected
	}

	deadline := time.Duration(s.cfg.WriteDeadlineSec) * time.Second
	if deadline <= 0 {
		deadline = 10 * time.Second
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(deadline))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Manager) dial(ctx context.Context) (*websocket.Conn, error) {
	handshake := time.Duration(s.cfg.HandshakeSec) * time.Second
	if handshake <= 0 {
		handshake = 10 * time.Second
	}
	dialer := websocket.Dialer{HandshakeTimeout: handshake}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.token)

	conn, _, err := dialer.DialContext(ctx, s.cfg.URL, header)
	return conn, err
}

func (s *Manager) readPump(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		frame := &dto.PushFrame{}
		if err := json.Unmarshal(data, frame); err != nil {
			log.WarnContext(ctx, "推送帧解析失败，已丢弃", "err", err)
			continue
		}
		if frame.Event == "" {
			continue
		}

		if err := s.deliver(ctx, frame); err != nil {
			return err
		}
	}
}

func (s *Manager) deliver(ctx context.Context, frame *dto.PushFrame) error {
	select {
	case s.events <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Manager) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = conn
}

func (s *Manager) teardown(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
	_ = conn.Close()
}

func (s *Manager) baseBackoff() time.Duration {
	base := time.Duration(s.cfg.ReconnectBaseMS) * time.Millisecond
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	return base
}

func (s *Manager) nextBackoff(cur time.Duration) time.Duration {
	max := time.Duration(s.cfg.ReconnectMaxSec) * time.Second
	if max <= 0 {
		max = 30 * time.Second
	}
	next := cur * 2
	if next > max {
		next = max
	}
	return next
}
