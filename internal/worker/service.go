package worker

import (
	"context"
	"errors"
	"time"

	"github.com/shipping-engine/internal/config"
	"github.com/shipping-engine/internal/constants"
	"github.com/shipping-engine/internal/logger"
	"github.com/shipping-engine/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultSnapshotWarmInterval = 5 * time.Minute
)

// Service 异步队列服务
type Service struct {
	name         string
	server       *asynq.Server
	mux          *asynq.ServeMux
	consumer     *Consumer
	warmInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, pricingCfg config.PricingConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	interval := time.Duration(pricingCfg.SnapshotWarmIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultSnapshotWarmInterval
	}
	return &Service{
		name:         "worker",
		server:       server,
		mux:          mux,
		consumer:     consumer,
		warmInterval: interval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.Container != nil && s.consumer.ShippingSnapshotService != nil {
		go s.runSnapshotWarmLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runSnapshotWarmLoop 定期重建快照，缓存过期前保持热数据
func (s *Service) runSnapshotWarmLoop(ctx context.Context) {
	snapshots := s.consumer.ShippingSnapshotService
	runOnce := func() {
		if _, err := snapshots.Refresh(ctx, constants.SnapshotReasonWarmup); err != nil {
			logger.Warnw("worker_snapshot_warm_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.warmInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
