package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"salemre/backend/internal/email"
	"salemre/backend/internal/logging"
)

// Pinger is anything the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// ServiceHandler serves the internal service API.
type ServiceHandler struct {
	checks   map[string]Pinger
	rdb      *redis.Client
	shutdown chan<- struct{}
	poll     time.Duration
	log      zerolog.Logger
}

// NewServiceHandler builds the service handler. rdb may be nil, in which
// case /test-email answers 404.
func NewServiceHandler(checks map[string]Pinger, rdb *redis.Client, shutdown chan<- struct{}) *ServiceHandler {
	return &ServiceHandler{
		checks:   checks,
		rdb:      rdb,
		shutdown: shutdown,
		poll:     200 * time.Millisecond,
		log:      logging.Component("service-api"),
	}
}

// Health handles GET /health.
func (h *ServiceHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	result := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			h.log.Error().Err(err).Str("check", name).Msg("health check failed")
			result[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		result[name] = "up"
	}
	c.JSON(status, gin.H{"success": status == http.StatusOK, "data": result})
}

// Shutdown handles POST /shutdown.
func (h *ServiceHandler) Shutdown(c *gin.Context) {
	h.log.Info().Msg("shutdown requested via service API")
	select {
	case h.shutdown <- struct{}{}:
	default:
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": "shutdown initiated"})
}

// TestEmail handles GET /test-email?to=<address>, returning the latest
// email captured by the mock sender. It polls briefly since emails are sent
// by background workers.
func (h *ServiceHandler) TestEmail(c *gin.Context) {
	to := strings.TrimSpace(c.Query("to"))
	if to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "to is required"})
		return
	}
	if h.rdb == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "mock email capture is not enabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	key := email.MockEmailKey(to)
	for i := 0; i < 10; i++ {
		raw, err := h.rdb.GetDel(ctx, key).Result()
		if err == nil {
			var msg email.MockEmail
			if err := json.Unmarshal([]byte(raw), &msg); err != nil {
				h.log.Error().Err(err).Str("key", key).Msg("failed to parse stored email")
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to parse stored email"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "data": msg})
			return
		}
		if !errors.Is(err, redis.Nil) {
			h.log.Error().Err(err).Str("key", key).Msg("redis error")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "redis error"})
			return
		}
		select {
		case <-ctx.Done():
			i = 10
		case <-time.After(h.poll):
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "no test email for " + to})
}
