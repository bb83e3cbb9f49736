package routes

import (
	"github.com/BerniceZTT/telecaller_crm/controllers"
	"github.com/BerniceZTT/telecaller_crm/middleware"
	"github.com/BerniceZTT/telecaller_crm/models"

	"github.com/gin-gonic/gin"
)

// RegisterLeadRoutes 注册线索路由
func RegisterLeadRoutes(router *gin.Engine, ctl *controllers.LeadController, dashboard *controllers.DashboardController, auth gin.HandlerFunc) {
	leads := router.Group("/leads")
	leads.Use(auth)

	adminOnly := middleware.RequireRoles(models.UserRoleADMIN)

	// 仅管理员
	leads.GET("/connected", adminOnly, ctl.GetConnectedLeads)
	leads.GET("/stats", adminOnly, dashboard.GetDashboardStats)

	leads.GET("", ctl.GetLeads)
	leads.POST("", ctl.CreateLead)
	leads.GET("/:id", ctl.GetLead)
	leads.PATCH("/:id", ctl.UpdateLead)
	leads.DELETE("/:id", ctl.DeleteLead)
	leads.PATCH("/:id/status", ctl.UpdateLeadStatus)
	leads.PATCH("/:id/call-response", ctl.LogCallResponse)
}
