package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerniceZTT/telecaller_crm/cache"
	"github.com/BerniceZTT/telecaller_crm/config"
	"github.com/BerniceZTT/telecaller_crm/controllers"
	"github.com/BerniceZTT/telecaller_crm/middleware"
	"github.com/BerniceZTT/telecaller_crm/queue"
	"github.com/BerniceZTT/telecaller_crm/realtime"
	"github.com/BerniceZTT/telecaller_crm/repository"
	"github.com/BerniceZTT/telecaller_crm/routes"
	"github.com/BerniceZTT/telecaller_crm/service"
	"github.com/BerniceZTT/telecaller_crm/utils"

	"github.com/gin-gonic/gin"
)

// storage 存储引擎
type storage struct {
	leads  service.LeadStore
	users  service.UserStore
	opLogs middleware.OperationLogStore
	status controllers.StatusReporter
	close  func(ctx context.Context)
}

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.InitLogger("info", true)
		utils.Logger.Fatal().Err(err).Msg("加载配置失败")
	}

	// 初始化日志
	utils.InitLogger(cfg.LogLevel, cfg.Debug())

	// 设置Gin模式
	if cfg.Debug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化存储
	store, err := openStorage(ctx, cfg)
	if err != nil {
		utils.Logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("初始化存储失败")
	}

	// 初始化系统数据
	utils.Logger.Info().Msg("开始系统初始化...")
	if err := repository.InitializeAdminAccount(ctx, store.users, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		utils.Logger.Error().Err(err).Msg("初始化管理员账户失败")
	}
	utils.Logger.Info().Msg("系统初始化完成")

	// 线索事件分发
	events := service.NewEventBus()
	hub := realtime.NewHub(cfg.CORSOrigins)
	events.Add(hub)

	if cfg.AMQPURL != "" {
		publisher, err := queue.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			utils.Logger.Error().Err(err).Msg("RabbitMQ不可用，线索事件不会发布到消息队列")
		} else {
			events.Add(publisher)
			defer publisher.Close()
		}
	}

	var statsCache service.StatsCache
	if cfg.RedisURI != "" {
		redisCache, err := cache.NewRedisStatsCache(ctx, cfg.RedisURI, cfg.StatsCacheTTL)
		if err != nil {
			utils.Logger.Error().Err(err).Msg("Redis不可用，看板统计不使用缓存")
		} else {
			statsCache = redisCache
			events.Add(service.StatsCacheInvalidator{Cache: redisCache})
			defer redisCache.Close()
		}
	}

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	leadService := service.NewLeadService(store.leads, store.users, events)

	// 回访提醒
	service.NewFollowUpScheduler(store.leads, events).Start(ctx, cfg.FollowUpHour)

	deps := routes.Dependencies{
		Auth:        service.NewAuthService(store.users, tokens),
		Leads:       leadService,
		Stats:       service.NewStatsService(store.leads, store.users, statsCache),
		Users:       service.NewUserService(store.leads, store.users),
		Hub:         hub,
		Storage:     store.status,
		CORSOrigins: cfg.CORSOrigins,
	}
	if cfg.OperationLog {
		deps.OperationLogs = store.opLogs
	}
	router := routes.SetupRouter(deps)

	// 设置HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 启动服务器
	go func() {
		utils.Logger.Info().Msgf("服务器启动，监听端口: %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal().Err(err).Msg("启动服务器失败")
		}
	}()

	// 优雅关闭
	<-ctx.Done()
	utils.Logger.Info().Msg("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Logger.Error().Err(err).Msg("服务器关闭异常")
	}
	store.close(shutdownCtx)

	utils.Logger.Info().Msg("服务器已优雅关闭")
}

// openStorage 按配置选择存储引擎
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		utils.Logger.Warn().Msg("使用内存存储，重启后数据丢失")
		mem := repository.NewMemoryStore()
		return &storage{
			leads:  mem.Leads(),
			users:  mem.Users(),
			opLogs: repository.NewMemoryOperationLogStore(),
			status: mem,
			close:  func(context.Context) {},
		}, nil
	}

	db, err := repository.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		db.Close(ctx)
		return nil, err
	}

	return &storage{
		leads:  repository.NewMongoLeadStore(db.DB()),
		users:  repository.NewMongoUserStore(db.DB()),
		opLogs: repository.NewMongoOperationLogStore(db.DB()),
		status: db,
		close:  db.Close,
	}, nil
}
