package sqlite

import (
	"fmt"

	"fooddetect/internal/models"
)

// defaultRecentLimit applies when GetRecent is called with a non-positive limit.
const defaultRecentLimit = 50

// ScanRepository implements repository.ScanRepository for SQLite.
type ScanRepository struct {
	db *DB
}

// NewScanRepository creates a new SQLite scan repository.
func NewScanRepository(db *DB) *ScanRepository {
	return &ScanRepository{db: db}
}

// Insert adds a new scan record to the database.
func (r *ScanRepository) Insert(scan *models.Scan) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO scans (filename, filesize, detection_count, item_count, status, message, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, scan.Filename, scan.FileSize, scan.DetectionCount, scan.ItemCount, scan.Status, scan.Message, scan.DurationMs, scan.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read scan id: %w", err)
	}
	scan.ID = id
	return id, nil
}

// GetRecent returns the newest scans first.
func (r *ScanRepository) GetRecent(limit int) ([]models.Scan, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, filename, filesize, detection_count, item_count, status, message, duration_ms, created_at
		FROM scans ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	scans := make([]models.Scan, 0)
	for rows.Next() {
		var s models.Scan
		if err := rows.Scan(&s.ID, &s.Filename, &s.FileSize, &s.DetectionCount, &s.ItemCount, &s.Status, &s.Message, &s.DurationMs, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		scans = append(scans, s)
	}

	return scans, rows.Err()
}

// GetStats returns totals over the whole scan log.
func (r *ScanRepository) GetStats() (*models.ScanStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var stats models.ScanStats
	err := r.db.Conn().QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(duration_ms), 0)
		FROM scans
	`, models.ScanStatusOK, models.ScanStatusError).Scan(&stats.TotalScans, &stats.Succeeded, &stats.Failed, &stats.AvgDurationMs)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan stats: %w", err)
	}

	return &stats, nil
}

// DeleteAll removes every scan record.
func (r *ScanRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM scans`); err != nil {
		return fmt.Errorf("failed to delete scans: %w", err)
	}
	return nil
}
