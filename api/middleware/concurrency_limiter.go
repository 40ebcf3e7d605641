package middleware

import (
	"net/http"

	"github.com/anoixa/bandpress/api/common"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

// retryAfterSeconds 满载时建议客户端等待的秒数
const retryAfterSeconds = "1"

// ConcurrencyLimiter 限制同时处理的请求数，超出时立即返回 503
type ConcurrencyLimiter struct {
	sem *semaphore.Weighted
}

// NewConcurrencyLimiter 并发限制器
func NewConcurrencyLimiter(maxConcurrency int64) *ConcurrencyLimiter {
	return &ConcurrencyLimiter{
		sem: semaphore.NewWeighted(maxConcurrency),
	}
}

// Middleware 返回 Gin 中间件
func (cl *ConcurrencyLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cl.sem.TryAcquire(1) {
			c.Header("Retry-After", retryAfterSeconds)
			common.RespondErrorAbort(c, http.StatusServiceUnavailable, "Server is busy, please try again later")
			return
		}

		defer cl.sem.Release(1)

		c.Next()
	}
}
