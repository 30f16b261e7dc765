package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fiatimetable/config"
)

// Client Redis 客户端封装
// 用于课表文档的读穿缓存与备份类接口的限流
type Client struct {
	rdb         *goredis.Client
	logger      *zap.Logger
	documentTTL time.Duration
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

	return &Client{rdb: rdb, logger: logger, documentTTL: cfg.DocumentTTL}, nil
}

// ── 课表文档缓存 ──

const documentPrefix = "timetable:document:"

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("cache miss")

// GetDocument 读取缓存的文档载荷与版本号。
// 未命中或只剩失效标记时返回 ErrCacheMiss
func (c *Client) GetDocument(ctx context.Context, owner string) ([]byte, int64, error) {
	vals, err := c.rdb.HMGet(ctx, documentPrefix+owner, "payload", "revision").Result()
	if err != nil {
		return nil, 0, err
	}
	payload, ok1 := vals[0].(string)
	revText, ok2 := vals[1].(string)
	if !ok1 || !ok2 {
		return nil, 0, ErrCacheMiss
	}
	revision, err := strconv.ParseInt(revText, 10, 64)
	if err != nil {
		return nil, 0, ErrCacheMiss
	}
	return []byte(payload), revision, nil
}

// setDocumentScript 仅当版本号不低于已记录的版本号时回填
var setDocumentScript = goredis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'revision')
if cur and tonumber(cur) > tonumber(ARGV[2]) then
  return 0
end
redis.call('HSET', KEYS[1], 'payload', ARGV[1], 'revision', ARGV[2])
if tonumber(ARGV[3]) > 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// invalidateDocumentScript 删除载荷，只保留最大版本号作为失效标记
var invalidateDocumentScript = goredis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'revision')
local rev = tonumber(ARGV[1])
if cur and tonumber(cur) > rev then
  rev = tonumber(cur)
end
redis.call('HDEL', KEYS[1], 'payload')
redis.call('HSET', KEYS[1], 'revision', rev)
if tonumber(ARGV[2]) > 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return rev
`)

// SetDocument 回填文档缓存，TTL 取配置值。
// 版本号低于失效标记（读库后又发生了写入）时放弃回填，返回 nil
func (c *Client) SetDocument(ctx context.Context, owner string, payload []byte, revision int64) error {
	stored, err := setDocumentScript.Run(ctx, c.rdb, []string{documentPrefix + owner},
		payload, revision, c.documentTTL.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if stored == 0 {
		c.logger.Debug("文档缓存已有更新版本，放弃回填", zap.String("owner", owner), zap.Int64("revision", revision))
	}
	return nil
}

// InvalidateDocument 写入后使文档缓存失效，并记录 revision 防止旧版本回填
func (c *Client) InvalidateDocument(ctx context.Context, owner string, revision int64) error {
	return invalidateDocumentScript.Run(ctx, c.rdb, []string{documentPrefix + owner},
		revision, c.documentTTL.Milliseconds()).Err()
}

// ── 限流 ──

// CheckRateLimit 滑动窗口计数：窗口内请求数未超过 limit 时返回 true
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString()

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(now.Add(-window).UnixNano(), 10))
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: member})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return count.Val() <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
