package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leapzhao/shape-store/analyzer"
	"github.com/leapzhao/shape-store/config"
	"github.com/leapzhao/shape-store/handler"
	"github.com/leapzhao/shape-store/logger"
	"github.com/leapzhao/shape-store/metadata"
	"github.com/leapzhao/shape-store/router"
	"github.com/leapzhao/shape-store/server"
	"github.com/leapzhao/shape-store/storage"

	"github.com/rs/zerolog/log"
)

type Application struct {
	config  *config.Config
	store   storage.DocumentStore
	indexer *metadata.Indexer
	server  *server.Server
}

// New 创建应用实例
func New(configPath string) (*Application, error) {
	// 加载配置
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 初始化日志
	if err := logger.Init(*cfg); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	// 创建文档存储
	store, err := storage.CreateStore(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create document store: %w", err)
	}

	// 创建元数据索引
	indexer, err := metadata.NewIndexer(*cfg)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create metadata indexer: %w", err)
	}

	// 健康检查数据库连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	log.Info().
		Str("database_type", cfg.Database.Type).
		Str("database_host", cfg.Database.Host).
		Msg("Database connection established")

	return &Application{
		config:  cfg,
		store:   store,
		indexer: indexer,
	}, nil
}

// Start 启动应用
func (app *Application) Start() error {
	// 组装结构推断引擎与存储决策
	engine := analyzer.New(analyzer.Config{
		MaxNestingDepth: app.config.Engine.MaxNestingDepth,
		MinConsistency:  app.config.Engine.MinConsistency,
	})
	decision := storage.NewDecisionEngine(app.config.Engine.MaxSQLDepth)

	ingestHandler := handler.NewIngestHandler(engine, decision, app.store, app.indexer)

	// 初始化路由
	ginRouter := router.Init(*app.config, ingestHandler)

	// 创建HTTP服务器
	app.server = server.New(*app.config, ginRouter)

	// 启动服务器
	go func() {
		if err := app.server.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	return nil
}

// Shutdown 关闭应用
func (app *Application) Shutdown() error {
	// 关闭数据库连接
	if err := app.store.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close document store")
	}
	if err := app.indexer.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close metadata indexer")
	}

	log.Info().Msg("Application shutdown completed")
	return nil
}

// Run 运行应用
func (app *Application) Run() error {
	// 启动应用
	if err := app.Start(); err != nil {
		return err
	}

	// 等待中断信号
	app.waitForShutdown()

	return nil
}

// waitForShutdown 等待关闭信号
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// 创建关闭上下文
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 关闭服务器
	if err := app.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	// 关闭应用
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Application shutdown error")
	}
}
