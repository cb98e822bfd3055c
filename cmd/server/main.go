package main

import (
	"context"
	"flag"
	"log"
	"os"

	"k8s.io/klog/v2"

	"github.com/govpilot/backend/config"
	"github.com/govpilot/backend/internal/eventbus"
	"github.com/govpilot/backend/internal/handler"
	"github.com/govpilot/backend/internal/pkg/agentapi"
	"github.com/govpilot/backend/internal/pkg/database"
	"github.com/govpilot/backend/internal/relay"
	"github.com/govpilot/backend/internal/repository"
	"github.com/govpilot/backend/internal/router"
	"github.com/govpilot/backend/internal/service"
)

func main() {
	// 初始化 klog
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("服务启动中...")

	cfg := config.GetConfig()

	if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	if err := os.MkdirAll(cfg.Data.DocumentsDir, 0755); err != nil {
		log.Fatalf("Failed to create documents directory: %v", err)
	}

	// 初始化数据库
	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化 Repository
	govRepo := repository.NewGovernanceRepository(db)
	riskRepo := repository.NewRiskAnalysisRepository(db)
	clarRepo := repository.NewClarificationRepository(db)
	turnRepo := repository.NewChatTurnRepository(db)
	docRepo := repository.NewUploadedDocumentRepository(db)

	// 事件总线与上游接入
	bus := eventbus.NewBus()
	var upstream *relay.Relay
	if cfg.Relay.WSURL != "" {
		upstream = relay.New(cfg.Relay.WSURL, bus, cfg.Relay.ReconnectDelay)
		upstream.Start(context.Background())
		defer upstream.Stop()
	} else {
		klog.Warning("relay ws url 未配置，仅分发本地事件")
	}

	// 外部治理代理客户端
	agent := agentapi.NewClient(cfg.Agent.BaseURL, cfg.Agent.AppName)

	// 初始化 Service
	govService := service.NewGovernanceService(govRepo, docRepo, cfg.Data.DocumentsDir)
	clarService := service.NewClarificationService(clarRepo)
	chatService := service.NewChatService(turnRepo, docRepo, agent)

	// 级联产生的更新和上游推送走同一条分发路径
	var publisher service.UpdatePublisher = busPublisher{bus: bus}
	if upstream != nil {
		publisher = upstream
	}
	riskService := service.NewRiskService(riskRepo, govRepo, clarService, agent, publisher)

	// 初始化 Handler
	govHandler := handler.NewGovernanceHandler(govService)
	riskHandler := handler.NewRiskHandler(riskService)
	clarHandler := handler.NewClarificationHandler(clarService)
	chatHandler := handler.NewChatHandler(chatService)
	updatesHandler := handler.NewUpdatesHandler(bus, upstream)

	// 设置路由
	r := router.Setup(cfg, govHandler, riskHandler, clarHandler, chatHandler, updatesHandler)

	log.Printf("Server starting on port %s...", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// busPublisher 本地事件直接进总线，和上游接入的事件走同一条分发路径
type busPublisher struct {
	bus *eventbus.Bus
}

func (p busPublisher) Publish(topic eventbus.Topic, data any) {
	p.bus.Publish(topic, data)
}
