package repository

import "fooddetect/internal/models"

// ScanRepository defines the interface for scan log operations.
type ScanRepository interface {
	// Create operations
	Insert(scan *models.Scan) (int64, error)

	// Read operations
	GetRecent(limit int) ([]models.Scan, error)
	GetStats() (*models.ScanStats, error)

	// Delete operations
	DeleteAll() error
}
