package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== PublicRateLimiter 公开接口限流器 ====================

// PublicRateLimiter 公开接口限流器
// 对匿名读取按客户端 IP 做固定窗口冷却，防止公开房源接口被刷
type PublicRateLimiter struct {
	locks sync.Map // key -> *lockEntry
}

// lockEntry 锁条目
type lockEntry struct {
	windowStart time.Time
	count       int
	mu          sync.Mutex
}

// 全局限流器实例
var publicLimiter = &PublicRateLimiter{}

// GetPublicLimiter 获取全局限流器
func GetPublicLimiter() *PublicRateLimiter {
	return publicLimiter
}

// Allow 检查窗口内是否允许再来一次请求
func (r *PublicRateLimiter) Allow(key string, window time.Duration, maxRequests int) bool {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	if now.Sub(entry.windowStart) >= window {
		entry.windowStart = now
		entry.count = 0
	}

	if entry.count >= maxRequests {
		return false
	}

	entry.count++
	return true
}

// ==================== Gin 中间件 ====================

// PublicRateLimit 公开接口限流中间件
func PublicRateLimit(window time.Duration, maxRequests int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("public:%s", c.ClientIP())
		if !publicLimiter.Allow(key, window, maxRequests) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": "请求过于频繁，请稍后再试",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
