package handlers

import (
	"net/http"

	"github.com/connectos/backend/internal/cache"
	"github.com/connectos/backend/internal/database"
	"github.com/gin-gonic/gin"
)

// Health reports whether the service and its dependencies are up
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	status := http.StatusOK
	dbStatus := "ok"
	if err := database.Health(); err != nil {
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}

	redisStatus := "not configured"
	if rc := cache.GetRedisClient(); rc != nil {
		redisStatus = "ok"
		if err := rc.Ping(c.Request.Context()); err != nil {
			redisStatus = "down"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, gin.H{
		"status":   http.StatusText(status),
		"database": dbStatus,
		"redis":    redisStatus,
	})
}
