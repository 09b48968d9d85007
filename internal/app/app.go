package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/veriflow-backend/internal/jobs"
	"github.com/yungbote/veriflow-backend/internal/pkg/logger"
	"github.com/yungbote/veriflow-backend/internal/store"
)

type App struct {
	Log      *logger.Logger
	Router   *gin.Engine
	Cfg      Config
	Store    store.Store
	Clients  Clients
	Services Services
	worker   *jobs.NudgeWorker
	cancel   context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	st, err := store.NewFirestoreStore(context.Background(), log, cfg.FirestoreProjectID)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init firestore store: %w", err)
	}

	clientset, err := wireClients(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	serviceset := wireServices(log, cfg, st, clientset)
	handlerset := wireHandlers(log, cfg, serviceset)
	router := wireRouter(cfg, handlerset)

	return &App{
		Log:      log,
		Router:   router,
		Cfg:      cfg,
		Store:    st,
		Clients:  clientset,
		Services: serviceset,
		worker:   jobs.NewNudgeWorker(log, serviceset.Nudge, cfg.NudgeInterval),
	}, nil
}

func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.worker.Start(ctx)
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
