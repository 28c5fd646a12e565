package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/db"
	"github.com/storemesh/marketplace-backend/internal/platform/envutil"
	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/realtime"
	"github.com/storemesh/marketplace-backend/internal/realtime/bus"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Hub      *realtime.Hub

	eventBus bus.Bus
	cancel   context.CancelFunc
}

func New() (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	pg, err := db.New(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	theDB := pg.DB()

	hub := realtime.NewHub()
	eventBus, err := bus.NewRedisBus(log)
	if err != nil {
		log.Warn("Redis unavailable, events stay in-process", "error", err)
		eventBus = bus.NewLocalBus(hub)
	}

	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, log, cfg, reposet, eventBus)
	if err != nil {
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset, hub)
	middlewareset := wireMiddleware(log, serviceset)
	router := wireRouter(handlerset, middlewareset)

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Hub:      hub,
		eventBus: eventBus,
	}, nil
}

// Start launches the bus forwarder so events published on other instances
// reach this instance's SSE subscribers.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if err := a.eventBus.StartForwarder(ctx, a.Hub.Publish); err != nil {
		a.Log.Error("Failed to start event forwarder", "error", err)
	}
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.eventBus != nil {
		_ = a.eventBus.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
