package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shipping-engine/internal/constants"
	"github.com/shipping-engine/internal/pricing"

	"github.com/redis/go-redis/v9"
)

const defaultSnapshotTTL = 5 * time.Minute

// setIfVersionScript 版本号未变化时才写入快照
// KEYS[1] 快照 KEYS[2] 版本号；ARGV 依次为期望版本、快照内容、过期毫秒数
var setIfVersionScript = redis.NewScript(`
local current = redis.call("GET", KEYS[2]) or "0"
if current ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// GetShippingSnapshot 读取配送配置快照
func GetShippingSnapshot(ctx context.Context) (*pricing.Snapshot, bool, error) {
	var snap pricing.Snapshot
	hit, err := GetJSON(ctx, constants.CacheKeyShippingSnapshot, &snap)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &snap, true, nil
}

// ShippingSnapshotVersion 当前快照版本，每次失效递增，未写入过为 0
func ShippingSnapshotVersion(ctx context.Context) (int64, error) {
	if !Enabled() {
		return 0, nil
	}
	version, err := redisClient.Get(ctx, BuildKey(constants.CacheKeyShippingSnapshotVersion)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

// SetShippingSnapshot 写入配送配置快照，ttl <= 0 时使用默认值
// version 为构建前读取的版本号，期间发生过失效则放弃写入并返回 false
func SetShippingSnapshot(ctx context.Context, snap *pricing.Snapshot, ttl time.Duration, version int64) (bool, error) {
	if snap == nil || !Enabled() {
		return false, nil
	}
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return false, err
	}
	keys := []string{
		BuildKey(constants.CacheKeyShippingSnapshot),
		BuildKey(constants.CacheKeyShippingSnapshotVersion),
	}
	stored, err := setIfVersionScript.Run(ctx, redisClient, keys, version, payload, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// InvalidateShippingSnapshot 递增版本号并删除快照
func InvalidateShippingSnapshot(ctx context.Context) error {
	if !Enabled() {
		return nil
	}
	_, err := redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, BuildKey(constants.CacheKeyShippingSnapshotVersion))
		pipe.Del(ctx, BuildKey(constants.CacheKeyShippingSnapshot))
		return nil
	})
	return err
}
