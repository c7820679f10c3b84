package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/config"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/api/handler"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/api/middleware"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/api/router"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/repository"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/service"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/database"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/jwt"
	applogger "github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/logger"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/metrics"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/redis"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/tracing"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("EMS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	// 接口变量只在连接成功时赋值，避免 typed-nil
	var (
		rdb       *redis.Client
		cache     service.Cache
		blacklist middleware.TokenBlacklist
		rateStore middleware.RateLimitStore
	)
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，排行榜缓存与 Token 黑名单不可用，限流降级为进程内", zap.Error(err))
		rdb = nil
	} else {
		cache, blacklist, rateStore = rdb, rdb, rdb
	}

	// 5. 初始化 JWT / 指标 / 追踪
	jwtMgr := jwt.NewManager(&cfg.Auth)
	m := metrics.New()
	shutdownTracing, err := tracing.Setup(context.Background(), &cfg.Tracing)
	if err != nil {
		logger.Warn("追踪初始化失败，span 不会导出", zap.Error(err))
	} else if cfg.Tracing.Enabled {
		logger.Info("追踪已启用", zap.String("endpoint", cfg.Tracing.Endpoint))
	}
	tracer := otel.Tracer(cfg.Tracing.ServiceName)

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, cache, m, tracer, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.Setup(router.Deps{
		Config:    cfg,
		Handler:   h,
		JWT:       jwtMgr,
		Blacklist: blacklist,
		RateStore: rateStore,
		Metrics:   m,
		Logger:    logger,
	})

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Warn("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	// 刷新未导出的 span
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("关闭追踪导出器失败", zap.Error(err))
	}

	logger.Info("服务器已关闭")
}
