package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"fooddetect/internal/logger"
	"fooddetect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScanRepo struct {
	scans     []models.Scan
	stats     *models.ScanStats
	err       error
	lastLimit int
	cleared   bool
}

func (r *fakeScanRepo) Insert(scan *models.Scan) (int64, error) { return 0, r.err }

func (r *fakeScanRepo) GetRecent(limit int) ([]models.Scan, error) {
	r.lastLimit = limit
	return r.scans, r.err
}

func (r *fakeScanRepo) GetStats() (*models.ScanStats, error) { return r.stats, r.err }

func (r *fakeScanRepo) DeleteAll() error {
	r.cleared = true
	return r.err
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler("YOLO Food Detection API", logger.NewNop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"YOLO Food Detection API"}`, rec.Body.String())
}

func TestScansHandler_Disabled(t *testing.T) {
	rec := httptest.NewRecorder()
	ScansHandler(nil, logger.NewNop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scans", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Scan log is disabled"}`, rec.Body.String())
}

func TestScansHandler_List(t *testing.T) {
	repo := &fakeScanRepo{scans: []models.Scan{{ID: 7, Filename: "a.jpg", Status: models.ScanStatusOK}}}
	handler := ScansHandler(repo, logger.NewNop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scans?limit=5000", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxScanLimit, repo.lastLimit)
	assert.Contains(t, rec.Body.String(), `"filename":"a.jpg"`)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scans?limit=abc", nil))
	assert.Equal(t, 50, repo.lastLimit)
}

func TestScansHandler_Delete(t *testing.T) {
	repo := &fakeScanRepo{}
	rec := httptest.NewRecorder()
	ScansHandler(repo, logger.NewNop()).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/scans", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, repo.cleared)
}

func TestScansHandler_Error(t *testing.T) {
	repo := &fakeScanRepo{err: errors.New("database is locked")}
	rec := httptest.NewRecorder()
	ScansHandler(repo, logger.NewNop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scans", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestScanStatsHandler(t *testing.T) {
	repo := &fakeScanRepo{stats: &models.ScanStats{TotalScans: 3, Succeeded: 2, Failed: 1, AvgDurationMs: 12.5}}
	rec := httptest.NewRecorder()
	ScanStatsHandler(repo, logger.NewNop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scans/stats", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_scans":3,"succeeded":2,"failed":1,"avg_duration_ms":12.5}`, rec.Body.String())
}

func TestLogsHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, logger.InfoFile), []byte("hello log"), 0644))

	rec := httptest.NewRecorder()
	LogsHandler(dir, logger.InfoFile).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/logs/info", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello log", rec.Body.String())

	rec = httptest.NewRecorder()
	LogsHandler(dir, logger.ErrorFile).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/logs/error", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAtoiDefault(t *testing.T) {
	tests := []struct {
		input    string
		def      int
		expected int
	}{
		{"10", 5, 10},
		{"", 5, 5},
		{"abc", 10, 10},
		{"-1", 5, 5},
		{"0", 5, 5},
		{"12.5", 5, 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, atoiDefault(tt.input, tt.def), "atoiDefault(%q, %d)", tt.input, tt.def)
	}
}

func TestRotateLogsHandler(t *testing.T) {
	handler := RotateLogsHandler(logger.NewNop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/logs/rotate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/logs/rotate", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"rotated"}`, rec.Body.String())
}
