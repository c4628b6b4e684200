package job

import (
	"Quayside/internal/pkg/logger"
	"Quayside/internal/service"
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// ResyncJob 定时全量校准
//
// 已读上报失败等原因会让本地未读数与服务端产生偏差，
// 周期性的列表刷新以服务端计数为准抹平差异。
type ResyncJob struct {
	syncService service.SyncService
}

func NewResyncJob(syncService service.SyncService) *ResyncJob {
	return &ResyncJob{syncService: syncService}
}

func (s *ResyncJob) Run() {
	traceID := "job-resync-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	if err := s.syncService.RefreshConversations(ctx); err != nil {
		log.ErrorContext(ctx, "定时校准失败", "err", err)
	}
}
