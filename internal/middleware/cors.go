package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSMiddleware allows the mobile client to call the API from the given
// origins. A single "*" allows every origin.
func CORSMiddleware(origins []string, next http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(next)
}
