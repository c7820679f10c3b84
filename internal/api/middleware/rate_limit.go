package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/response"
)

// RateLimitStore 分布式限流存储（Redis 滑动窗口）
type RateLimitStore interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 速率限制中间件
// limit: 窗口内允许的最大请求数
// window: 窗口时长
// store 为 nil 或出错时降级为进程内按 IP 的令牌桶
func RateLimit(store RateLimitStore, limit int, window time.Duration) gin.HandlerFunc {
	local := newLocalLimiter(limit, window)

	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())

		var allowed bool
		var err error
		if store != nil {
			allowed, err = store.CheckRateLimit(c.Request.Context(), key, limit, window)
		}
		if store == nil || err != nil {
			allowed = local.allow(key)
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}

// localLimiter 进程内限流，每个 key 一个令牌桶
// 空闲超过一个窗口的桶已回满，与新建等价，清扫时直接丢弃
type localLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	every     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLocalLimiter(limit int, window time.Duration) *localLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &localLimiter{
		limiters: make(map[string]*limiterEntry),
		every:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
		idleTTL:  window,
		now:      time.Now,
	}
}

func (l *localLimiter) allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweepLocked(now)
	}
	e, ok := l.limiters[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.every, l.burst)}
		l.limiters[key] = e
	}
	e.seen = now
	l.mu.Unlock()

	return e.lim.AllowN(now, 1)
}

// sweepLocked 清除空闲超过 idleTTL 的桶，调用方持有 mu
func (l *localLimiter) sweepLocked(now time.Time) {
	for k, e := range l.limiters {
		if now.Sub(e.seen) >= l.idleTTL {
			delete(l.limiters, k)
		}
	}
	l.lastSweep = now
}
