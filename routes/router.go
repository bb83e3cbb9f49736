package routes

import (
	"github.com/BerniceZTT/telecaller_crm/controllers"
	"github.com/BerniceZTT/telecaller_crm/middleware"
	"github.com/BerniceZTT/telecaller_crm/realtime"
	"github.com/BerniceZTT/telecaller_crm/service"

	"github.com/gin-gonic/gin"
)

// Dependencies 路由依赖的服务
type Dependencies struct {
	Auth          *service.AuthService
	Leads         *service.LeadService
	Stats         *service.StatsService
	Users         *service.UserService
	Hub           *realtime.Hub
	Storage       controllers.StatusReporter
	OperationLogs middleware.OperationLogStore // 为空时不记录操作日志
	CORSOrigins   []string
}

// SetupRouter 创建Gin实例并应用中间件
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()

	// 应用中间件
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(deps.CORSOrigins))
	router.Use(middleware.ErrorHandler())
	if deps.OperationLogs != nil {
		router.Use(middleware.OperationLoggerMiddleware(deps.OperationLogs))
	}

	RegisterRoutes(router, deps)
	return router
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	authMiddleware := middleware.AuthMiddleware(deps.Auth)

	// 注册认证路由
	RegisterAuthRoutes(router, controllers.NewAuthController(deps.Auth), authMiddleware)

	// 注册线索路由
	RegisterLeadRoutes(router, controllers.NewLeadController(deps.Leads), controllers.NewDashboardController(deps.Stats), authMiddleware)

	// 注册用户管理路由
	RegisterUserRoutes(router, controllers.NewUserController(deps.Users), authMiddleware)

	// 注册数据看板路由
	RegisterDashboardStatsRoutes(router, controllers.NewDashboardController(deps.Stats), authMiddleware)

	// 健康检查、指标与实时推送
	RegisterSystemRoutes(router, deps, authMiddleware)
}
