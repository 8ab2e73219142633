package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fooddetect/internal/config"
	"fooddetect/internal/logger"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// UploadStore keeps uploaded images on disk for the duration of one request.
type UploadStore struct {
	dir    string
	maxAge time.Duration
	logger *logger.Logger
}

// NewUploadStore creates the upload directory when missing.
func NewUploadStore(cfg *config.Config, logger *logger.Logger) (*UploadStore, error) {
	if err := os.MkdirAll(cfg.UploadDirectory, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create upload directory %s", cfg.UploadDirectory)
	}
	return &UploadStore{
		dir:    cfg.UploadDirectory,
		maxAge: cfg.UploadMaxAge,
		logger: logger,
	}, nil
}

// Dir returns the upload directory.
func (s *UploadStore) Dir() string {
	return s.dir
}

// Save writes r to a new file named by a random uuid. Only the extension of
// the client filename is kept. It returns the stored path and its size.
func (s *UploadStore) Save(r io.Reader, filename string) (string, int64, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.dir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return "", 0, errors.Wrap(err, "failed to create upload file")
	}

	size, err := io.Copy(file, r)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, errors.Wrap(err, "failed to write upload file")
	}

	return path, size, nil
}

// Remove deletes a stored upload. A file that is already gone is not an error.
func (s *UploadStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete upload %s", filepath.Base(path))
	}
	return nil
}

// Sweep deletes uploads older than maxAge, left behind by interrupted requests.
func (s *UploadStore) Sweep(now time.Time) int {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Error("Error reading upload directory: %v", err)
		return 0
	}

	removed := 0
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil || now.Sub(info.ModTime()) < s.maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, file.Name())); err != nil {
			s.logger.Error("Error deleting stale upload %s: %v", file.Name(), err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("Removed %d stale uploads", removed)
	}
	return removed
}

// Run sweeps the upload directory on a ticker until done is closed. A
// non-positive interval disables the sweeper.
func (s *UploadStore) Run(interval time.Duration, done <-chan struct{}) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}
