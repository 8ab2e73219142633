package service

import (
	"context"
	"errors"

	"fooddetect/internal/models"
)

// Detector produces raw detections for an image stored on disk.
type Detector interface {
	Detect(ctx context.Context, imagePath string) ([]models.RawDetection, error)
}

// DetectorPool hands each call to one idle detector from a fixed set.
type DetectorPool struct {
	idle chan Detector
}

// NewDetectorPool builds a pool over the given detectors.
func NewDetectorPool(detectors ...Detector) (*DetectorPool, error) {
	if len(detectors) == 0 {
		return nil, errors.New("detector pool needs at least one detector")
	}
	idle := make(chan Detector, len(detectors))
	for _, d := range detectors {
		idle <- d
	}
	return &DetectorPool{idle: idle}, nil
}

// Size returns the number of detectors in the pool.
func (p *DetectorPool) Size() int {
	return cap(p.idle)
}

// Detect waits for an idle detector, or for ctx to be done.
func (p *DetectorPool) Detect(ctx context.Context, imagePath string) ([]models.RawDetection, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case d := <-p.idle:
		defer func() { p.idle <- d }()
		return d.Detect(ctx, imagePath)
	}
}
