package handler

import (
	"encoding/json"
	"net/http"

	"fooddetect/internal/logger"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, logger *logger.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

func respondError(w http.ResponseWriter, logger *logger.Logger, status int, message string) {
	respondJSON(w, logger, status, errorResponse{Success: false, Message: message})
}
