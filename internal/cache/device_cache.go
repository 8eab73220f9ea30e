// internal/cache/device_cache.go
package cache

import (
	"context"
	"encoding/json"
	"time"

	"tably-service/internal/domain/customer"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DeviceCustomerCache caches device-id → customer resolution in Redis.
// getCustomerByDevice runs on nearly every storefront request, so the hot
// path skips Postgres. A cold or unavailable Redis only costs a DB read:
// every error here is logged and treated as a miss.
type DeviceCustomerCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeviceCustomerCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *DeviceCustomerCache {
	return &DeviceCustomerCache{client: client, ttl: ttl, logger: logger}
}

func key(deviceID string) string {
	return "device:customer:" + deviceID
}

func (c *DeviceCustomerCache) Get(ctx context.Context, deviceID string) (*customer.Customer, bool) {
	data, err := c.client.Get(ctx, key(deviceID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Debug("device cache read failed", zap.String("device_id", deviceID), zap.Error(err))
		return nil, false
	}

	var cust customer.Customer
	if err := json.Unmarshal(data, &cust); err != nil {
		c.logger.Warn("device cache entry corrupt", zap.String("device_id", deviceID), zap.Error(err))
		return nil, false
	}
	return &cust, true
}

func (c *DeviceCustomerCache) Set(ctx context.Context, deviceID string, cust *customer.Customer) {
	data, err := json.Marshal(cust)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(deviceID), data, c.ttl).Err(); err != nil {
		c.logger.Debug("device cache write failed", zap.String("device_id", deviceID), zap.Error(err))
	}
}

// Invalidate drops the cached binding. Called on link, unlink and passcode
// rotation so a stale customer snapshot never outlives a binding change.
func (c *DeviceCustomerCache) Invalidate(ctx context.Context, deviceIDs ...string) {
	keys := make([]string, 0, len(deviceIDs))
	for _, id := range deviceIDs {
		keys = append(keys, key(id))
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Debug("device cache invalidation failed", zap.Error(err))
	}
}
