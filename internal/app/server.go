// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"tably-service/internal/cache"
	"tably-service/internal/config"
	"tably-service/internal/db"
	activityHandler "tably-service/internal/handlers/activity"
	identityHandler "tably-service/internal/handlers/identity"
	walletHandler "tably-service/internal/handlers/wallet"
	wsHandler "tably-service/internal/handlers/ws"
	"tably-service/internal/middleware"
	"tably-service/internal/repository/postgres"
	activitysvc "tably-service/internal/service/activity"
	identitysvc "tably-service/internal/service/identity"
	"tably-service/internal/service/passcode"
	walletsvc "tably-service/internal/service/wallet"
	"tably-service/internal/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.Default()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB()
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisCfg := db.RedisConfig{
		Addresses: []string{s.cfg.RedisAddr},
		Password:  s.cfg.RedisPass,
		DB:        0,
		PoolSize:  10,
	}

	redisClient, err := db.NewRedisClient(redisCfg)
	if err != nil {
		log.Fatalf("[REDIS] failed to connect: %v", err)
	}
	log.Println("[REDIS] connected")

	// ----- Logger -----
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	s.logger = logger

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	customerRepo := postgres.NewCustomerRepository(dbWrapper)
	deviceRepo := postgres.NewDeviceRepository(dbWrapper)
	activityRepo := postgres.NewActivityRepository(dbWrapper)

	// ----- Cache -----
	deviceCache := cache.NewDeviceCustomerCache(redisClient, s.cfg.DeviceCacheTTL, logger)

	// ----- Pairing event hub -----
	hub := ws.NewHub(logger)
	go hub.Run(context.Background())

	// ----- Services (Usecases) -----
	passcodeAuthority := passcode.NewAuthority(customerRepo, logger)
	identityService := identitysvc.NewService(customerRepo, deviceRepo, deviceCache, hub, passcodeAuthority, logger)
	activityService := activitysvc.NewService(activityRepo, logger)
	walletService := walletsvc.NewService(customerRepo, logger)

	// ----- Handlers -----
	identityHandlerInst := identityHandler.NewIdentityHandler(identityService, passcodeAuthority)
	activityHandlerInst := activityHandler.NewActivityHandler(activityService)
	walletHandlerInst := walletHandler.NewWalletHandler(walletService)
	wsHandlerInst := wsHandler.NewWSHandler(hub, logger)

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		IdentityHandler: identityHandlerInst,
		ActivityHandler: activityHandlerInst,
		WalletHandler:   walletHandlerInst,
		WSHandler:       wsHandlerInst,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}
