package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fooddetect/internal/aggregate"
	"fooddetect/internal/config"
	"fooddetect/internal/logger"
	"fooddetect/internal/repository"
	"fooddetect/internal/repository/sqlite"
	"fooddetect/internal/routes"
	"fooddetect/internal/service"
	"fooddetect/internal/service/ai"
	"fooddetect/internal/service/storage"
	"fooddetect/internal/service/websocket"
)

type App struct {
	config    *config.Config
	logger    *logger.Logger
	detectors []*ai.DetectorService
	uploads   *storage.UploadStore
	hub       *websocket.HubService
	db        *sqlite.DB
	manager   *service.Manager
	scanRepo  repository.ScanRepository
}

// NewApp loads the configuration and builds every service. The detection
// networks are loaded here, once, and injected into the manager.
func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	a := &App{config: cfg, logger: log}

	workers := cfg.DetectorWorkers
	if workers < 1 {
		workers = 1
	}
	pooled := make([]service.Detector, 0, workers)
	for i := 0; i < workers; i++ {
		ds, err := ai.NewDetectorService(cfg, log) // each worker loads its own network
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to load detector: %w", err)
		}
		a.detectors = append(a.detectors, ds)
		pooled = append(pooled, ds)
	}
	pool, err := service.NewDetectorPool(pooled...)
	if err != nil {
		a.Close()
		return nil, err
	}

	uploads, err := storage.NewUploadStore(cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.uploads = uploads

	if cfg.DatabasePath != "" {
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.db = db
		a.scanRepo = sqlite.NewScanRepository(db)
	}

	a.hub = websocket.NewHubService(log)
	a.manager = service.NewManager(pool, aggregate.New(cfg.ConfidenceThresh, cfg.UnitLabel), uploads, a.scanRepo, a.hub, log)

	return a, nil
}

// Run serves HTTP until SIGINT/SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	defer close(done)

	// Start background services
	go a.hub.Run(done)
	go a.uploads.Run(a.config.UploadMaxAge, done)

	router := routes.SetupRoutes(routes.Dependencies{
		Processor: a.manager,
		ScanRepo:  a.scanRepo,
		Hub:       a.hub,
		Config:    a.config,
		Logger:    a.logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("🚀 %s\n", a.config.ServiceName)
	fmt.Printf("📍 URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("📁 Uploads: %s\n", a.config.UploadDirectory)
	fmt.Printf("🤖 AI Model: %s (%s, %d workers)\n", a.config.ModelPath, a.config.ModelFormat, len(a.detectors))
	if a.db != nil {
		fmt.Printf("🗄️  Scan log: %s\n", a.config.DatabasePath)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Close releases the networks, database and log files.
func (a *App) Close() {
	for _, d := range a.detectors {
		if err := d.Close(); err != nil {
			a.logger.Error("Error closing detector: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("Error closing database: %v", err)
		}
	}
	a.logger.Close()
}
