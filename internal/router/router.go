package router

import (
	"time"

	"woofpack/config"
	"woofpack/internal/domain"
	"woofpack/internal/handler"
	"woofpack/internal/middleware"
	"woofpack/internal/repository"
	"woofpack/internal/service"
	"woofpack/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// App bundles the wired engine with the pieces main needs to run and stop:
// the gateway hub, the collectible service for the expiry sweep, and the
// optional Redis relay.
type App struct {
	Engine       *gin.Engine
	Hub          *ws.Hub
	Collectibles *service.CollectibleService
	Bridge       *ws.RedisBridge
}

func Setup(cfg *config.Config, db *gorm.DB, log zerolog.Logger) *App {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	locRepo := repository.NewLocationRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	govRepo := repository.NewGovernanceRepository(db)
	collectibleRepo := repository.NewCollectibleRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	hub := ws.NewHub()
	var bridge *ws.RedisBridge
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		bridge = ws.NewRedisBridge(rdb, hub, cfg.Redis.Channel, uuid.NewString(), log)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("gateway relay enabled")
	}

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	ledgerSvc := service.NewLedgerService(db, ledgerRepo, userRepo)
	govSvc := service.NewGovernanceService(govRepo, ledgerSvc,
		cfg.Game.ProposalStake, cfg.Game.VoteStake, cfg.Game.VotingWindow)
	collectibleSvc := service.NewCollectibleService(db, collectibleRepo, ledgerSvc)
	notifSvc := service.NewNotificationService(notifRepo, hub, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	walletHandler := handler.NewWalletHandler(ledgerSvc)
	locationHandler := handler.NewLocationHandler(locRepo, hub, &cfg.Game)
	collectibleHandler := handler.NewCollectibleHandler(collectibleSvc, hub, &cfg.Game)
	govHandler := handler.NewGovernanceHandler(govSvc, notifSvc)
	notifHandler := handler.NewNotificationHandler(notifRepo)
	chatHistoryHandler := handler.NewChatHistoryHandler(chatRepo)
	gateway := handler.NewGateway(hub, authSvc, collectibleSvc, chatRepo, locRepo, userRepo, notifSvc, log)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.RequireRole(domain.RoleAdmin)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/wallet", walletHandler.GetBalances)
			me.GET("/wallet/transactions", walletHandler.ListTransactions)
			me.POST("/wallet/transfer", walletHandler.Transfer)
			me.PATCH("/location", locationHandler.UpdateLocation)
			me.GET("/location", locationHandler.GetMyLocation)
			me.GET("/notifications", notifHandler.List)
			me.PUT("/notifications/:id/read", notifHandler.MarkRead)
			me.GET("/collections", collectibleHandler.MyCollections)
		}

		api.GET("/users/nearby", authMw, locationHandler.NearbyUsers)

		api.GET("/collectibles/nearby", authMw, collectibleHandler.Nearby)
		api.POST("/collectibles/:id/collect", authMw, collectibleHandler.Collect)
		api.POST("/collectibles", authMw, adminMw, collectibleHandler.Spawn)
		api.DELETE("/collectibles/:id", authMw, adminMw, collectibleHandler.Deactivate)

		api.GET("/proposals", authMw, govHandler.ListProposals)
		api.GET("/proposals/:id", authMw, govHandler.GetProposal)
		api.POST("/proposals", authMw, govHandler.CreateProposal)
		api.POST("/proposals/:id/votes", authMw, govHandler.CastVote)
		api.GET("/proposals/:id/tally", authMw, govHandler.Tally)
		api.POST("/stakes", authMw, govHandler.CreateStake)

		api.GET("/chat/:room/messages", authMw, chatHistoryHandler.List)
	}

	r.GET("/ws/gateway", gateway.Upgrade)

	return &App{
		Engine:       r,
		Hub:          hub,
		Collectibles: collectibleSvc,
		Bridge:       bridge,
	}
}
