package cron

import (
	"Ripple/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine               *cron.Cron
	counterReconcileJob  *job.CounterReconcileJob
	notificationCleanJob *job.NotificationCleanJob
}

func NewCronManager(
	counterReconcileJob *job.CounterReconcileJob,
	notificationCleanJob *job.NotificationCleanJob,
) *Manager {
	return &Manager{
		engine:               cron.New(cron.WithSeconds()),
		counterReconcileJob:  counterReconcileJob,
		notificationCleanJob: notificationCleanJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob("@every 5m", s.counterReconcileJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob("@daily", s.notificationCleanJob); err != nil {
		return err
	}
	return nil
}

// JobCount 当前已注册的任务数
func (s *Manager) JobCount() int {
	return len(s.engine.Entries())
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	s.engine.Stop()
}
