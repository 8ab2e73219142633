package handler

import (
	"net/http"

	"fooddetect/internal/logger"
)

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// HealthHandler handles GET /api/health with a static payload.
func HealthHandler(serviceName string, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, logger, http.StatusOK, healthResponse{Status: "healthy", Service: serviceName})
	}
}
