package routes

import (
	"github.com/BerniceZTT/telecaller_crm/controllers"
	"github.com/BerniceZTT/telecaller_crm/middleware"
	"github.com/BerniceZTT/telecaller_crm/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterSystemRoutes 健康检查、指标、实时推送
func RegisterSystemRoutes(router *gin.Engine, deps Dependencies, auth gin.HandlerFunc) {
	health := controllers.NewHealthController(deps.Storage)

	router.GET("/health", health.Health)
	router.GET("/health/db", auth, middleware.RequireRoles(models.UserRoleADMIN), health.DBStatus)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if deps.Hub != nil {
		ws := controllers.NewRealtimeController(deps.Hub)
		router.GET("/ws/leads", middleware.AuthMiddlewareWithQueryToken(deps.Auth), ws.SubscribeLeadEvents)
	}
}
