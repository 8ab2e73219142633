package models

import "time"

// Scan status values.
const (
	ScanStatusOK    = "ok"
	ScanStatusError = "error"
)

// Scan is the metadata of one processed upload. It never carries detection results.
type Scan struct {
	ID             int64     `json:"id"`
	Filename       string    `json:"filename"`
	FileSize       int64     `json:"filesize"`
	DetectionCount int       `json:"detection_count"`
	ItemCount      int       `json:"item_count"`
	Status         string    `json:"status"`
	Message        string    `json:"message,omitempty"`
	DurationMs     int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// ScanStats contains totals over the scan log.
type ScanStats struct {
	TotalScans    int     `json:"total_scans"`
	Succeeded     int     `json:"succeeded"`
	Failed        int     `json:"failed"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}
