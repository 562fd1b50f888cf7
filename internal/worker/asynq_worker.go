package worker

import (
	"context"
	"strings"

	"github.com/shipping-engine/internal/constants"
	"github.com/shipping-engine/internal/logger"
	"github.com/shipping-engine/internal/provider"
	"github.com/shipping-engine/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskShippingSnapshotRefresh, c.handleShippingSnapshotRefresh)
}

func (c *Consumer) handleShippingSnapshotRefresh(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_snapshot_refresh_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseShippingSnapshotRefreshPayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_snapshot_refresh_unmarshal_failed", "error", err)
		return err
	}
	if c.Container == nil || c.ShippingSnapshotService == nil {
		logger.Warnw("worker_snapshot_refresh_skip_service_nil")
		return nil
	}
	reason := strings.TrimSpace(payload.Reason)
	if reason == "" {
		reason = constants.SnapshotReasonAdminWrite
	}
	if _, err := c.ShippingSnapshotService.Refresh(ctx, reason); err != nil {
		logger.Warnw("worker_snapshot_refresh_failed", "reason", reason, "error", err)
		return err
	}
	return nil
}
