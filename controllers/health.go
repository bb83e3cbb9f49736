package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/BerniceZTT/telecaller_crm/utils"

	"github.com/gin-gonic/gin"
)

// StatusReporter 存储状态
type StatusReporter interface {
	Status(ctx context.Context) (map[string]interface{}, error)
}

// HealthController 健康检查
type HealthController struct {
	storage StatusReporter
}

// NewHealthController 创建健康检查控制器
func NewHealthController(storage StatusReporter) *HealthController {
	return &HealthController{storage: storage}
}

// Health 进程存活
func (ctl *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DBStatus 存储状态
func (ctl *HealthController) DBStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := ctl.storage.Status(ctx)
	if err != nil {
		utils.Logger.Error().Err(err).Msg("获取数据库状态失败")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": status})
}
