package webserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimit struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter allows each client rate requests per window with a matching
// burst.
type RateLimiter struct {
	clients map[string]*clientLimit
	mu      sync.Mutex
	rate    int
	window  time.Duration
	now     func() time.Time
}

// newRateLimiter starts a limiter whose idle entries are dropped every
// window until ctx is done.
func newRateLimiter(ctx context.Context, n int, window time.Duration, now func() time.Time) *RateLimiter {
	if n <= 0 {
		n = 1
	}
	rl := &RateLimiter{
		clients: make(map[string]*clientLimit),
		rate:    n,
		window:  window,
		now:     now,
	}

	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.cleanup()
			}
		}
	}()

	return rl
}

// Allow reports whether key may make another request now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cl, ok := rl.clients[key]
	if !ok {
		cl = &clientLimit{lim: rate.NewLimiter(rate.Every(rl.window/time.Duration(rl.rate)), rl.rate)}
		rl.clients[key] = cl
	}
	cl.seen = now
	return cl.lim.AllowN(now, 1)
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, cl := range rl.clients {
		if now.Sub(cl.seen) >= rl.window {
			delete(rl.clients, key)
		}
	}
}

func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString("sub")
		if key == "" {
			key = c.ClientIP()
		}
		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"err": fmt.Sprintf("rate limit exceeded: %d requests per %v", limiter.rate, limiter.window),
			})
			return
		}
		c.Next()
	}
}
