package cron

import (
	"Quayside/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine         *cron.Cron
	typingSweepJob *job.TypingSweepJob
	resyncJob      *job.ResyncJob
	resyncSpec     string
}

func NewCronManager(typingSweepJob *job.TypingSweepJob, resyncJob *job.ResyncJob, resyncSpec string) *Manager {
	return &Manager{
		engine:         cron.New(cron.WithSeconds()),
		typingSweepJob: typingSweepJob,
		resyncJob:      resyncJob,
		resyncSpec:     resyncSpec,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob("@every 5s", s.typingSweepJob); err != nil {
		return err
	}
	if s.resyncSpec != "" {
		if _, err := s.engine.AddJob(s.resyncSpec, s.resyncJob); err != nil {
			return err
		}
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	s.engine.Stop()
}
