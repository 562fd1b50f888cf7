package queue

import (
	"encoding/json"
	"time"

	"github.com/shipping-engine/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskShippingSnapshotRefresh 配送配置快照刷新任务
	TaskShippingSnapshotRefresh = constants.TaskShippingSnapshotRefresh
)

// ShippingSnapshotRefreshPayload 快照刷新任务载荷
type ShippingSnapshotRefreshPayload struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewShippingSnapshotRefreshTask 创建快照刷新任务
func NewShippingSnapshotRefreshTask(payload ShippingSnapshotRefreshPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskShippingSnapshotRefresh, body), nil
}

// ParseShippingSnapshotRefreshPayload 解析快照刷新任务载荷
func ParseShippingSnapshotRefreshPayload(body []byte) (ShippingSnapshotRefreshPayload, error) {
	var payload ShippingSnapshotRefreshPayload
	if len(body) == 0 {
		return payload, nil
	}
	err := json.Unmarshal(body, &payload)
	return payload, err
}
