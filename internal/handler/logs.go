package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"fooddetect/internal/logger"
)

// LogsHandler serves one level's log file as text/plain.
func LogsHandler(logDir, filename string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveLogFile(w, r, logDir, filename)
	}
}

// serveLogFile sets headers and serves a log file if it exists.
func serveLogFile(w http.ResponseWriter, r *http.Request, logDir, filename string) {
	filePath := filepath.Join(logDir, filename)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Log file not found: " + filename))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	http.ServeFile(w, r, filePath)
}

// RotateLogsHandler starts new segments for all log files.
func RotateLogsHandler(l *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, l, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if err := l.Rotate(); err != nil {
			l.Error("Error rotating logs: %v", err)
			respondError(w, l, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		l.Info("Log files rotated")
		respondJSON(w, l, http.StatusOK, map[string]string{"status": "rotated"})
	}
}
