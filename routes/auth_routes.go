package routes

import (
	"github.com/BerniceZTT/telecaller_crm/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证路由
func RegisterAuthRoutes(router *gin.Engine, ctl *controllers.AuthController, auth gin.HandlerFunc) {
	group := router.Group("/auth")

	// 公开路由 - 不需要认证
	group.POST("/register", ctl.Register)
	group.POST("/login", ctl.Login)

	// 需要认证的路由
	group.GET("/me", auth, ctl.Me)
}
