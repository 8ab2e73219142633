package routes

import (
	"net/http"

	"fooddetect/internal/config"
	"fooddetect/internal/handler"
	"fooddetect/internal/logger"
	"fooddetect/internal/middleware"
	"fooddetect/internal/repository"
	"fooddetect/internal/service/websocket"
)

// Dependencies groups what the HTTP layer needs. ScanRepo may be nil.
type Dependencies struct {
	Processor handler.ImageProcessor
	ScanRepo  repository.ScanRepository
	Hub       *websocket.HubService
	Config    *config.Config
	Logger    *logger.Logger
}

// SetupRoutes registers the API endpoints and wraps the mux with request
// logging and CORS.
func SetupRoutes(deps Dependencies) http.Handler {
	cfg, log := deps.Config, deps.Logger
	mux := http.NewServeMux()

	// Detection API
	mux.HandleFunc("/api/detect", handler.DetectHandler(deps.Processor, cfg.MaxUploadBytes, log))
	mux.HandleFunc("/api/health", handler.HealthHandler(cfg.ServiceName, log))

	// Scan log
	mux.HandleFunc("/api/scans", handler.ScansHandler(deps.ScanRepo, log))
	mux.HandleFunc("/api/scans/stats", handler.ScanStatsHandler(deps.ScanRepo, log))

	// Live feed
	if deps.Hub != nil {
		mux.HandleFunc("/api/ws", handler.LiveFeedHandler(deps.Hub, log))
	}

	// Log endpoints
	mux.HandleFunc("/api/logs/info", handler.LogsHandler(cfg.LogDirectory, logger.InfoFile))
	mux.HandleFunc("/api/logs/warning", handler.LogsHandler(cfg.LogDirectory, logger.WarningFile))
	mux.HandleFunc("/api/logs/error", handler.LogsHandler(cfg.LogDirectory, logger.ErrorFile))
	mux.HandleFunc("/api/logs/rotate", handler.RotateLogsHandler(log))

	return middleware.CORSMiddleware(cfg.CORSOrigins, middleware.LoggingMiddleware(log, mux))
}
