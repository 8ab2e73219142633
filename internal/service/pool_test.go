package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"fooddetect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingDetector struct {
	release chan struct{}
	active  *activeCounter
}

type activeCounter struct {
	mu      sync.Mutex
	current int
	peak    int
}

func (c *activeCounter) inc() {
	c.mu.Lock()
	c.current++
	if c.current > c.peak {
		c.peak = c.current
	}
	c.mu.Unlock()
}

func (c *activeCounter) dec() {
	c.mu.Lock()
	c.current--
	c.mu.Unlock()
}

func (d *blockingDetector) Detect(ctx context.Context, _ string) ([]models.RawDetection, error) {
	d.active.inc()
	defer d.active.dec()
	<-d.release
	return nil, nil
}

func TestNewDetectorPool_RequiresDetectors(t *testing.T) {
	_, err := NewDetectorPool()
	assert.Error(t, err)
}

func TestDetectorPool_LimitsConcurrency(t *testing.T) {
	counter := &activeCounter{}
	release := make(chan struct{})
	pool, err := NewDetectorPool(
		&blockingDetector{release: release, active: counter},
		&blockingDetector{release: release, active: counter},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, pool.Size())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pool.Detect(context.Background(), "img.jpg")
			assert.NoError(t, err)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, counter.peak, 2)
}

func TestDetectorPool_ContextCancelledWhileWaiting(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	counter := &activeCounter{}
	pool, err := NewDetectorPool(&blockingDetector{release: release, active: counter})
	require.NoError(t, err)

	go pool.Detect(context.Background(), "busy.jpg")
	require.Eventually(t, func() bool {
		counter.mu.Lock()
		defer counter.mu.Unlock()
		return counter.current == 1
	}, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pool.Detect(ctx, "waiting.jpg")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
