package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const activeOrdersKey = "mes:orders:active"

// OrderCache 进行中订单列表的读穿缓存
// 缓存是可丢弃的投影：任何订单写入都整体失效，下一次完整读取即为最新视图
// （last full reload wins），数据库始终是唯一事实来源。
type OrderCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewOrderCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *OrderCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &OrderCache{rdb: rdb, ttl: ttl, logger: logger}
}

// GetActive 读取缓存的订单列表，未命中或解析失败都按未命中处理
func (c *OrderCache) GetActive(ctx context.Context) ([]entity.Order, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, activeOrdersKey).Bytes()
	if err != nil {
		return nil, false
	}
	var orders []entity.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		c.logger.Warn("订单缓存解析失败，按未命中处理", zap.Error(err))
		return nil, false
	}
	return orders, true
}

func (c *OrderCache) SetActive(ctx context.Context, orders []entity.Order) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(orders)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, activeOrdersKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("订单缓存写入失败", zap.Error(err))
	}
}

// Invalidate 任何订单变更后调用
func (c *OrderCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, activeOrdersKey).Err(); err != nil {
		c.logger.Warn("订单缓存失效失败", zap.Error(err))
	}
}
