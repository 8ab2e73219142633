package sqlite

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"fooddetect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDatabase_Connection(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "scans.db")
	db, err := New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist")
}

func TestScanRepository_InsertAndRecent(t *testing.T) {
	repo := NewScanRepository(setupTestDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"first.jpg", "second.png", "third.gif"} {
		scan := &models.Scan{
			Filename:       name,
			FileSize:       int64(100 * (i + 1)),
			DetectionCount: i + 2,
			ItemCount:      i + 1,
			Status:         models.ScanStatusOK,
			DurationMs:     int64(10 * (i + 1)),
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		id, err := repo.Insert(scan)
		require.NoError(t, err)
		assert.Equal(t, id, scan.ID)
	}

	scans, err := repo.GetRecent(2)
	require.NoError(t, err)
	require.Len(t, scans, 2)
	assert.Equal(t, "third.gif", scans[0].Filename)
	assert.Equal(t, "second.png", scans[1].Filename)
	assert.Equal(t, int64(300), scans[0].FileSize)
	assert.Equal(t, 4, scans[0].DetectionCount)
	assert.True(t, base.Add(2*time.Minute).Equal(scans[0].CreatedAt))

	all, err := repo.GetRecent(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestScanRepository_Stats(t *testing.T) {
	repo := NewScanRepository(setupTestDB(t))

	empty, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, models.ScanStats{}, *empty)

	now := time.Now()
	for _, s := range []models.Scan{
		{Filename: "a.jpg", Status: models.ScanStatusOK, DurationMs: 10, CreatedAt: now},
		{Filename: "b.jpg", Status: models.ScanStatusOK, DurationMs: 30, CreatedAt: now},
		{Filename: "c.jpg", Status: models.ScanStatusError, Message: "decode failed", DurationMs: 20, CreatedAt: now},
	} {
		s := s
		_, err := repo.Insert(&s)
		require.NoError(t, err)
	}

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalScans)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)
	assert.InDelta(t, 20.0, stats.AvgDurationMs, 1e-9)
}

func TestScanRepository_DeleteAll(t *testing.T) {
	repo := NewScanRepository(setupTestDB(t))

	_, err := repo.Insert(&models.Scan{Filename: "x.png", Status: models.ScanStatusOK, CreatedAt: time.Now()})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAll())

	scans, err := repo.GetRecent(10)
	require.NoError(t, err)
	assert.Empty(t, scans)
}

func TestScanRepository_ConcurrentInserts(t *testing.T) {
	repo := NewScanRepository(setupTestDB(t))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Insert(&models.Scan{Filename: "concurrent.jpg", Status: models.ScanStatusOK, CreatedAt: time.Now()})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalScans)
}
