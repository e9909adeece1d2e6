package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"careerdashboard/backend/config"
)

// Client Redis 客户端封装
// 当前用于排行榜快照缓存与全量重算去抖；Redis 不可用时引擎降级直连数据库
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 重算去抖 ──

const debounceKey = "ranking:recompute:debounce"

// AcquireRecomputeSlot 尝试获取重算窗口：SETNX 成功表示本次事件负责重算，
// 失败表示窗口内已有一次重算被触发，调用方直接跳过即可。
// token 为持有者标识，仅用于排查日志。
func (c *Client) AcquireRecomputeSlot(ctx context.Context, token string, window time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, debounceKey, token, window).Result()
	if err != nil {
		return false, fmt.Errorf("获取重算窗口失败: %w", err)
	}
	return ok, nil
}

// ── 排行榜快照缓存 ──

const leaderboardKey = "ranking:leaderboard:top"

// CacheLeaderboard 写入榜单快照（JSON），TTL 到期自动失效
func (c *Client) CacheLeaderboard(ctx context.Context, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, leaderboardKey, payload, ttl).Err()
}

// GetLeaderboard 读取榜单快照，缓存未命中返回 (nil, nil)
func (c *Client) GetLeaderboard(ctx context.Context) ([]byte, error) {
	b, err := c.rdb.Get(ctx, leaderboardKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// InvalidateLeaderboard 主动失效榜单快照（重算完成后调用）
func (c *Client) InvalidateLeaderboard(ctx context.Context) error {
	return c.rdb.Del(ctx, leaderboardKey).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
