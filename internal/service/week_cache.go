package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xszhu002/ke-cheng-biao/internal/dto"
	"github.com/xszhu002/ke-cheng-biao/pkg/redis"
)

// WeekCache 周课表视图缓存
// 所有方法均为尽力而为，缓存故障不影响业务结果
type WeekCache interface {
	// GetWeek 未命中时返回本次读取对应的缓存键，查询结果只能写回该键；空键表示不缓存
	GetWeek(ctx context.Context, scheduleID string, week int) (resp *dto.WeekScheduleResponse, key string, ok bool)
	SetWeek(ctx context.Context, key string, resp *dto.WeekScheduleResponse)
	Invalidate(ctx context.Context, scheduleID string)
}

// NewWeekCache rdb 为 nil 时返回不缓存的实现
func NewWeekCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) WeekCache {
	if rdb == nil || ttl <= 0 {
		return noopWeekCache{}
	}
	return &redisWeekCache{rdb: rdb, ttl: ttl, logger: logger}
}

type noopWeekCache struct{}

func (noopWeekCache) GetWeek(context.Context, string, int) (*dto.WeekScheduleResponse, string, bool) {
	return nil, "", false
}

func (noopWeekCache) SetWeek(context.Context, string, *dto.WeekScheduleResponse) {}

func (noopWeekCache) Invalidate(context.Context, string) {}

// redisWeekCache 键中带课表版本号，任何写操作递增版本即可使旧键失效
// 版本只在读取前取一次，读库期间发生的写入会让回填的键不可达
type redisWeekCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func (c *redisWeekCache) key(ctx context.Context, scheduleID string, week int) (string, error) {
	ver, err := c.rdb.ScheduleVersion(ctx, scheduleID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("schedule:week:%s:v%d:%d", scheduleID, ver, week), nil
}

func (c *redisWeekCache) GetWeek(ctx context.Context, scheduleID string, week int) (*dto.WeekScheduleResponse, string, bool) {
	key, err := c.key(ctx, scheduleID, week)
	if err != nil {
		c.logger.Warn("读取课表缓存版本失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, "", false
	}
	var resp dto.WeekScheduleResponse
	if err := c.rdb.GetJSON(ctx, key, &resp); err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			c.logger.Warn("读取周课表缓存失败", zap.String("key", key), zap.Error(err))
			return nil, "", false
		}
		return nil, key, false
	}
	return &resp, key, true
}

func (c *redisWeekCache) SetWeek(ctx context.Context, key string, resp *dto.WeekScheduleResponse) {
	if key == "" {
		return
	}
	if err := c.rdb.SetJSON(ctx, key, resp, c.ttl); err != nil {
		c.logger.Warn("写入周课表缓存失败", zap.String("key", key), zap.Error(err))
	}
}

func (c *redisWeekCache) Invalidate(ctx context.Context, scheduleID string) {
	if err := c.rdb.BumpScheduleVersion(ctx, scheduleID); err != nil {
		c.logger.Warn("刷新课表缓存版本失败", zap.String("schedule_id", scheduleID), zap.Error(err))
	}
}
