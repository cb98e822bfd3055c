package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/govpilot/backend/config"
	"github.com/govpilot/backend/internal/handler"
)

func Setup(
	cfg *config.Config,
	governanceHandler *handler.GovernanceHandler,
	riskHandler *handler.RiskHandler,
	clarificationHandler *handler.ClarificationHandler,
	chatHandler *handler.ChatHandler,
	updatesHandler *handler.UpdatesHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	// WebSocket 升级不能走压缩
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/updates/ws"})))

	api := r.Group("/api")
	{
		governanceHandler.RegisterRoutes(api)
		riskHandler.RegisterRoutes(api)
		clarificationHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		updatesHandler.RegisterRoutes(api)
	}

	return r
}
