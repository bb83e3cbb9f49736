package controllers

import (
	"net/http"

	"github.com/BerniceZTT/telecaller_crm/service"
	"github.com/BerniceZTT/telecaller_crm/utils"

	"github.com/gin-gonic/gin"
)

// DashboardController 数据看板
type DashboardController struct {
	stats *service.StatsService
}

// NewDashboardController 创建看板控制器
func NewDashboardController(stats *service.StatsService) *DashboardController {
	return &DashboardController{stats: stats}
}

// GetDashboardStats 获取数据看板统计信息
func (ctl *DashboardController) GetDashboardStats(c *gin.Context) {
	identity, ok := utils.MustIdentity(c)
	if !ok {
		return
	}

	utils.LogInfo(map[string]interface{}{
		"userId": identity.ID,
		"path":   c.FullPath(),
	}, "获取数据看板统计信息")

	stats, err := ctl.stats.Dashboard(c.Request.Context(), identity)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
