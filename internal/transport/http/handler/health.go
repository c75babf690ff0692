package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"sro-assistant/internal/index"
)

type HealthHandler struct {
	db        *gorm.DB
	redis     *redis.Client
	mqConn    *amqp.Connection
	idx       *index.Index
	startedAt time.Time
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client, mqConn *amqp.Connection, idx *index.Index, startedAt time.Time) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb, mqConn: mqConn, idx: idx, startedAt: startedAt}
}

// Check handles GET /healthz. It reports per-dependency status and
// returns 503 when any dependency is down.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{
		"mysql":    h.checkMySQL(ctx),
		"redis":    h.checkRedis(ctx),
		"rabbitmq": h.checkRabbitMQ(),
	}

	status := 200
	overall := "ok"
	for _, v := range checks {
		if v != "ok" {
			status = 503
			overall = "degraded"
		}
	}

	c.JSON(status, gin.H{
		"status":         overall,
		"checks":         checks,
		"indexed_docs":   h.idx.Size(),
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	})
}

func (h *HealthHandler) checkMySQL(ctx context.Context) string {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err.Error()
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return err.Error()
	}
	return "ok"
}

func (h *HealthHandler) checkRedis(ctx context.Context) string {
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return err.Error()
	}
	return "ok"
}

func (h *HealthHandler) checkRabbitMQ() string {
	if h.mqConn.IsClosed() {
		return "connection closed"
	}
	return "ok"
}
