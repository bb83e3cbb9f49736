package routes

import (
	"github.com/BerniceZTT/telecaller_crm/controllers"
	"github.com/BerniceZTT/telecaller_crm/middleware"
	"github.com/BerniceZTT/telecaller_crm/models"

	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes 注册用户管理路由，均需管理员
func RegisterUserRoutes(router *gin.Engine, ctl *controllers.UserController, auth gin.HandlerFunc) {
	users := router.Group("/users")
	users.Use(auth, middleware.RequireRoles(models.UserRoleADMIN))

	users.GET("/telecallers", ctl.GetTelecallers)
	users.GET("/telecallers/:id/activities", ctl.GetTelecallerActivities)
}
