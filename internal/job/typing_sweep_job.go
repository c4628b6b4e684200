package job

import (
	"Quayside/internal/pkg/consts"
	"Quayside/internal/store"
	log "log/slog"
	"time"
)

// TypingSweepJob 输入状态过期清理
//
// 对端崩溃或掉线时不会发出 stop_typing，没有这道清理，
// 输入中的提示会永远挂在界面上。
type TypingSweepJob struct {
	store *store.ConversationStore
	ttl   time.Duration
}

func NewTypingSweepJob(st *store.ConversationStore, ttlSec int) *TypingSweepJob {
	if ttlSec <= 0 {
		ttlSec = consts.DefaultTypingTTLSec
	}
	return &TypingSweepJob{
		store: st,
		ttl:   time.Duration(ttlSec) * time.Second,
	}
}

func (s *TypingSweepJob) Run() {
	swept := s.store.SweepTyping(time.Now().Add(-s.ttl))
	if swept > 0 {
		log.Debug("过期输入状态已清理", "count", swept)
	}
}
