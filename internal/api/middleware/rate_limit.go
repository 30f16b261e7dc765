package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"fiatimetable/pkg/redis"
	"fiatimetable/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制，用于备份、云同步和 ICS 导入
// limit: 窗口内允许的最大请求数
// rdb 为 nil 或 limit <= 0 时直接放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("fiatimetable:rate:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis 出错时降级放行
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			response.TooManyRequests(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
