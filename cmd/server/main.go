package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"careerdashboard/backend/config"
	"careerdashboard/backend/internal/repository"
	"careerdashboard/backend/internal/service"
	"careerdashboard/backend/pkg/database"
	applogger "careerdashboard/backend/pkg/logger"
	"careerdashboard/backend/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("引擎启动中...", zap.String("log_level", cfg.Log.Level))

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3.1 执行数据库迁移（唯一索引是一致性保证的前提）
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，榜单缓存与重算去抖不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 依赖注入: Repository → Service
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, rdb, logger)

	// 6. 周期任务：自动选课扫描 + 排名兜底重算
	// 传输层（HTTP 适配）由外围服务承担，本进程只驱动引擎
	ctx, cancel := context.WithCancel(context.Background())
	ticker := time.NewTicker(cfg.Ranking.RecomputeInterval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if outcomes, err := svc.Matcher.AutoEnrollAllCourses(ctx); err != nil {
					logger.Warn("周期自动选课失败", zap.Error(err))
				} else {
					logger.Debug("周期自动选课完成", zap.Int("courses", len(outcomes)))
				}
				if _, err := svc.Ranking.RecomputeGlobalRankings(ctx); err != nil {
					logger.Warn("周期排名重算失败", zap.Error(err))
				}
			}
		}
	}()

	logger.Info("引擎已就绪",
		zap.Duration("recompute_interval", cfg.Ranking.RecomputeInterval))

	// 7. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ticker.Stop()
	cancel()

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("引擎已退出")
}
