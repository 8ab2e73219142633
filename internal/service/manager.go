package service

import (
	"context"
	"io"
	"time"

	"fooddetect/internal/aggregate"
	"fooddetect/internal/logger"
	"fooddetect/internal/models"
	"fooddetect/internal/repository"
	"fooddetect/internal/service/websocket"
)

// UploadStore persists an upload for the duration of one request.
type UploadStore interface {
	Save(r io.Reader, filename string) (string, int64, error)
	Remove(path string) error
}

// Broadcaster receives every successful detection summary.
type Broadcaster interface {
	Broadcast(event websocket.DetectionEvent) bool
}

// Upload is an accepted image file.
type Upload struct {
	Filename string
	Content  io.Reader
}

// Manager runs one upload through save, detect, aggregate and cleanup.
type Manager struct {
	detector    Detector
	aggregator  *aggregate.Aggregator
	uploads     UploadStore
	scanRepo    repository.ScanRepository
	broadcaster Broadcaster
	logger      *logger.Logger
	now         func() time.Time
}

// NewManager wires the processing pipeline. scanRepo and broadcaster may be nil.
func NewManager(detector Detector, aggregator *aggregate.Aggregator, uploads UploadStore,
	scanRepo repository.ScanRepository, broadcaster Broadcaster, logger *logger.Logger) *Manager {
	return &Manager{
		detector:    detector,
		aggregator:  aggregator,
		uploads:     uploads,
		scanRepo:    scanRepo,
		broadcaster: broadcaster,
		logger:      logger,
		now:         time.Now,
	}
}

// ScanRepository returns the scan log, or nil when none is configured.
func (m *Manager) ScanRepository() repository.ScanRepository {
	return m.scanRepo
}

// Process stores the upload temporarily, detects objects in it and returns
// the aggregated items. The stored file is always removed before returning.
func (m *Manager) Process(ctx context.Context, upload Upload) (items []models.AggregatedItem, err error) {
	start := m.now()
	scan := &models.Scan{Filename: upload.Filename, CreatedAt: start}

	defer func() {
		scan.DurationMs = m.now().Sub(start).Milliseconds()
		if err != nil {
			scan.Status = models.ScanStatusError
			scan.Message = err.Error()
			m.logger.Error("Processing %s failed: %v", upload.Filename, err)
		} else {
			scan.Status = models.ScanStatusOK
			scan.ItemCount = len(items)
		}
		m.record(scan)
	}()

	path, size, err := m.uploads.Save(upload.Content, upload.Filename)
	if err != nil {
		return nil, &ProcessingError{Op: "save upload", Err: err}
	}
	scan.FileSize = size

	detections, detectErr := m.detector.Detect(ctx, path)

	if removeErr := m.uploads.Remove(path); removeErr != nil {
		if detectErr == nil {
			return nil, &ProcessingError{Op: "delete upload", Err: removeErr}
		}
		m.logger.Error("Error deleting upload after failed detection: %v", removeErr)
	}
	if detectErr != nil {
		return nil, &ProcessingError{Op: "detect", Err: detectErr}
	}
	scan.DetectionCount = len(detections)

	items = m.aggregator.Aggregate(detections)
	m.logger.Info("Processed %s: %d detections, %d items", upload.Filename, len(detections), len(items))

	if m.broadcaster != nil {
		m.broadcaster.Broadcast(websocket.DetectionEvent{
			Filename:      upload.Filename,
			DetectedItems: items,
			Timestamp:     start,
		})
	}

	return items, nil
}

func (m *Manager) record(scan *models.Scan) {
	if m.scanRepo == nil {
		return
	}
	if _, err := m.scanRepo.Insert(scan); err != nil {
		m.logger.Error("Error saving scan to database: %v", err)
	}
}
