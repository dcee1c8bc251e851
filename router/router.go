package router

import (
	"github.com/leapzhao/shape-store/config"
	"github.com/leapzhao/shape-store/handler"
	"github.com/leapzhao/shape-store/middleware"

	"github.com/gin-gonic/gin"
)

// Init 初始化路由与中间件
func Init(cfg config.Config, ingestHandler *handler.IngestHandler) *gin.Engine {
	if cfg.Environment == config.EnvProduct {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 中间件
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodySize))
	router.Use(middleware.RateLimit(cfg.Server.RateLimit))

	// 路由
	v1 := router.Group("/api/v1")
	{
		v1.POST("/ingest", ingestHandler.Ingest)
		v1.POST("/analyze", ingestHandler.Analyze)
		v1.GET("/search/json", ingestHandler.SearchJSON)
		v1.GET("/stats", ingestHandler.Stats)
		v1.GET("/health", ingestHandler.HealthCheck)
	}

	return router
}
