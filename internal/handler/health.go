package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thkox/home-ai-server/internal/pkg/cache"
	"github.com/thkox/home-ai-server/internal/pkg/mongodb"
)

// HealthHandler 存活与就绪探针
type HealthHandler struct {
	mongo *mongodb.Client
	redis *cache.RedisCache
}

func NewHealthHandler(mongo *mongodb.Client, redis *cache.RedisCache) *HealthHandler {
	return &HealthHandler{mongo: mongo, redis: redis}
}

// Health 存活探针，进程活着即返回 ok
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready 就绪探针，探测 MongoDB 和 Redis 连通性
// 任一依赖不可达时返回 503，摘出负载
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.mongo.Client().Ping(ctx, nil); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "mongodb unreachable",
		})
		return
	}
	if err := h.redis.Client().Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "redis unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
