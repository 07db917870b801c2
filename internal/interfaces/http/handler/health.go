package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/timepulse/backend/internal/infrastructure/storage"
	"github.com/timepulse/backend/internal/infrastructure/websocket"
)

// HealthHandler 健康检查
type HealthHandler struct {
	db       *sqlx.DB
	registry *websocket.Registry
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(db *sqlx.DB, registry *websocket.Registry) *HealthHandler {
	return &HealthHandler{db: db, registry: registry}
}

// Check 数据库可用且迁移完成时返回 ok
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	version, dirty, err := storage.SchemaVersion(h.db)
	if err != nil || dirty {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "schemaVersion": version, "dirty": dirty})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"schemaVersion": version,
		"connections":   h.registry.Len(),
		"channels":      h.registry.ChannelCount(),
	})
}
