package routes

import (
	"github.com/BerniceZTT/telecaller_crm/controllers"
	"github.com/BerniceZTT/telecaller_crm/middleware"
	"github.com/BerniceZTT/telecaller_crm/models"

	"github.com/gin-gonic/gin"
)

// RegisterDashboardStatsRoutes 注册数据看板统计相关路由
func RegisterDashboardStatsRoutes(router *gin.Engine, ctl *controllers.DashboardController, auth gin.HandlerFunc) {
	router.GET("/users/dashboard/stats", auth, middleware.RequireRoles(models.UserRoleADMIN), ctl.GetDashboardStats)
}
