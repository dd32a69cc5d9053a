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
	"go.uber.org/zap"

	"timetable-viewer/config"
	"timetable-viewer/internal/api/handler"
	"timetable-viewer/internal/api/router"
	"timetable-viewer/internal/model"
	"timetable-viewer/internal/repository"
	"timetable-viewer/internal/service"
	applogger "timetable-viewer/pkg/logger"
	"timetable-viewer/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
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

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("dataset", cfg.Dataset.Path),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 课表版式
	layout, err := buildLayout(&cfg.Layout)
	if err != nil {
		logger.Fatal("课表版式配置无效", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，导出缓存与限流将不可用", zap.Error(err))
			rdb = nil
		}
	}

	// 5. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(cfg)
	svc := service.NewService(cfg, repo, layout, rdb, logger)
	h := handler.NewHandler(svc)

	// 6. 加载数据集（失败则无法提供服务）
	if err := svc.Timetable.Load(context.Background()); err != nil {
		logger.Fatal("课表数据加载失败", zap.Error(err))
	}

	// 7. 初始化路由
	engine := router.Setup(cfg, h, rdb, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号：SIGHUP 重新加载数据集，SIGINT/SIGTERM 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	var sig os.Signal
	for sig = range quit {
		if sig != syscall.SIGHUP {
			break
		}
		logger.Info("收到 SIGHUP，重新加载课表数据")
		// 失败时沿用旧数据
		_ = svc.Timetable.Load(context.Background())
	}

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// buildLayout 将配置中的版式覆盖转为课表版式，未配置的部分使用内置默认值
func buildLayout(cfg *config.LayoutConfig) (*model.Layout, error) {
	slots := make([][2]string, 0, len(cfg.TimeSlots))
	for _, ts := range cfg.TimeSlots {
		slots = append(slots, [2]string{ts.Start, ts.End})
	}
	return model.NewLayout(cfg.LabelKey, cfg.KeyMapping, slots)
}
