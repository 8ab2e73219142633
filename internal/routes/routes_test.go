package routes

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"fooddetect/internal/config"
	"fooddetect/internal/logger"
	"fooddetect/internal/models"
	"fooddetect/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProcessor struct {
	items []models.AggregatedItem
}

func (p staticProcessor) Process(context.Context, service.Upload) ([]models.AggregatedItem, error) {
	return p.items, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	return SetupRoutes(Dependencies{
		Processor: staticProcessor{items: []models.AggregatedItem{{Name: "apple", Quantity: 1, Unit: "No.of", Confidence: 0.88}}},
		Config: &config.Config{
			ServiceName:    "YOLO Food Detection API",
			MaxUploadBytes: 10 << 20,
			LogDirectory:   t.TempDir(),
			CORSOrigins:    []string{"*"},
		},
		Logger: logger.NewNop(),
	})
}

func TestRoutes_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"YOLO Food Detection API"}`, rec.Body.String())
}

func TestRoutes_Detect(t *testing.T) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "apple.jpeg")
	require.NoError(t, err)
	part.Write([]byte("jpeg"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/detect", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Origin", "http://expo.local")
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"success":true,"detectedItems":[{"name":"apple","quantity":1,"unit":"No.of","confidence":0.88}]}`, rec.Body.String())
}

func TestRoutes_ScansDisabledWithoutDatabase(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scans/stats", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutes_NoLiveFeedWithoutHub(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ws", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
