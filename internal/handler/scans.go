package handler

import (
	"net/http"
	"strconv"

	"fooddetect/internal/logger"
	"fooddetect/internal/repository"
)

// maxScanLimit caps the page size of GET /api/scans.
const maxScanLimit = 500

// ScansHandler handles GET /api/scans (recent scan metadata) and
// DELETE /api/scans (clear the log).
func ScansHandler(scanRepo repository.ScanRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if scanRepo == nil {
			respondError(w, logger, http.StatusNotFound, "Scan log is disabled")
			return
		}

		switch r.Method {
		case http.MethodGet:
			limit := atoiDefault(r.URL.Query().Get("limit"), 50)
			if limit > maxScanLimit {
				limit = maxScanLimit
			}
			scans, err := scanRepo.GetRecent(limit)
			if err != nil {
				logger.Error("Error querying scans from database: %v", err)
				respondError(w, logger, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			respondJSON(w, logger, http.StatusOK, scans)

		case http.MethodDelete:
			if err := scanRepo.DeleteAll(); err != nil {
				logger.Error("Error clearing scans: %v", err)
				respondError(w, logger, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			logger.Info("Scan log cleared")
			respondJSON(w, logger, http.StatusOK, map[string]string{"status": "cleared"})

		default:
			respondError(w, logger, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// ScanStatsHandler handles GET /api/scans/stats.
func ScanStatsHandler(scanRepo repository.ScanRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if scanRepo == nil {
			respondError(w, logger, http.StatusNotFound, "Scan log is disabled")
			return
		}

		stats, err := scanRepo.GetStats()
		if err != nil {
			logger.Error("Error getting scan stats: %v", err)
			respondError(w, logger, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		respondJSON(w, logger, http.StatusOK, stats)
	}
}

// atoiDefault parses a positive integer, falling back to def.
func atoiDefault(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return def
}
