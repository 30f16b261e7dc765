package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"fiatimetable/config"
	"fiatimetable/internal/api/handler"
	"fiatimetable/internal/api/router"
	"fiatimetable/internal/job"
	"fiatimetable/internal/repository"
	"fiatimetable/internal/service"
	"fiatimetable/pkg/database"
	applogger "fiatimetable/pkg/logger"
	"fiatimetable/pkg/objectstore"
	"fiatimetable/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（可选）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
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
		zap.String("owner", cfg.Timetable.OwnerKey),
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

	// 4. 连接 Redis（可选：失败时不缓存课表文档、不限流）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，课表缓存与限流将不可用", zap.Error(err))
		rdb = nil
	}
	var cache repository.DocumentCache
	if rdb != nil {
		cache = rdb
	}

	// 5. 对象存储（可选：未配置时云端备份返回"未配置"）
	store, err := objectstore.NewClient(&cfg.Storage, logger)
	if err != nil {
		logger.Warn("对象存储初始化失败，云端备份将不可用", zap.Error(err))
		store = nil
	}
	var objects service.ObjectStore
	if store != nil {
		objects = store
	}

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db, cache, logger)
	svc := service.NewService(cfg, repo, objects, logger)
	h := handler.NewHandler(svc)

	// 7. 定时任务
	var uploader job.CloudUploader
	if objects != nil {
		uploader = svc.Backup
	}
	scheduler := job.NewScheduler(cfg, svc.View, uploader, logger)
	if err := scheduler.Start(context.Background()); err != nil {
		logger.Fatal("定时任务启动失败", zap.Error(err))
	}

	// 8. 初始化路由
	engine := router.Setup(cfg, h, rdb, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	// 倒计时走 SSE 长连接，不设置 WriteTimeout
	srv := router.NewServer(fmt.Sprintf(":%d", cfg.Server.Port), engine)

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	scheduler.Stop()

	// 关闭数据库连接
	if sqlDB != nil {
		sqlDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
