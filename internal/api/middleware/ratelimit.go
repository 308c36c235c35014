package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"salemre/backend/internal/logging"
)

// clientLimiter is the token bucket of one client IP.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterMiddleware limits requests per client IP.
type RateLimiterMiddleware struct {
	clients map[string]*clientLimiter
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	idle    time.Duration
	stop    chan struct{}
	once    sync.Once
	log     zerolog.Logger
}

// NewRateLimiterMiddleware starts a limiter refilling rps tokens per second
// into buckets of burst. Close stops its cleanup loop.
func NewRateLimiterMiddleware(rps float64, burst int) *RateLimiterMiddleware {
	if burst < 1 {
		burst = 1
	}
	rm := &RateLimiterMiddleware{
		clients: make(map[string]*clientLimiter),
		rps:     rate.Limit(rps),
		burst:   burst,
		idle:    30 * time.Minute,
		stop:    make(chan struct{}),
		log:     logging.Component("ratelimit"),
	}
	go rm.cleanupClients(10 * time.Minute)
	return rm
}

func (rm *RateLimiterMiddleware) getClientLimiter(key string) *rate.Limiter {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	cl, ok := rm.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rm.rps, rm.burst)}
		rm.clients[key] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

func (rm *RateLimiterMiddleware) cleanupClients(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := rm.evictIdle(time.Now()); n > 0 {
				rm.log.Debug().Int("removed", n).Msg("rate limiter cleanup")
			}
		case <-rm.stop:
			return
		}
	}
}

func (rm *RateLimiterMiddleware) evictIdle(now time.Time) int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	n := 0
	for key, cl := range rm.clients {
		if now.Sub(cl.lastSeen) > rm.idle {
			delete(rm.clients, key)
			n++
		}
	}
	return n
}

// Close stops the cleanup loop.
func (rm *RateLimiterMiddleware) Close() {
	rm.once.Do(func() { close(rm.stop) })
}

// Limit is the Gin handler. A zero rate disables limiting.
func (rm *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rm.rps <= 0 {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if !rm.getClientLimiter(ip).Allow() {
			rm.log.Warn().Str("ip", ip).Str("path", c.FullPath()).Msg("rate limit exceeded")
			c.Header("Retry-After", "1")
			abort(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		c.Next()
	}
}
