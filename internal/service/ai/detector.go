package ai

import (
	"context"
	"image"
	"os"
	"sync"

	"fooddetect/internal/config"
	"fooddetect/internal/logger"
	"fooddetect/internal/models"
	"fooddetect/internal/service/ai/postprocess"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Supported network output layouts.
const (
	FormatYOLOv8 = "yolov8"
	FormatSSD    = "ssd"
)

// ssdInputSize is the input resolution of the SSD MobileNet COCO graph.
const ssdInputSize = 300

// DetectorService wraps one loaded DNN network. A gocv.Net must not run
// Forward concurrently, so calls are serialized; use several services
// behind a pool for parallelism.
type DetectorService struct {
	net          gocv.Net
	modelPath    string
	configPath   string
	format       string
	inputSize    image.Point
	minScore     float64
	nmsThreshold float64
	logger       *logger.Logger
	closed       bool
	mu           sync.Mutex
}

// NewDetectorService loads the network described by the config.
func NewDetectorService(cfg *config.Config, logger *logger.Logger) (*DetectorService, error) {
	service := &DetectorService{
		modelPath:    cfg.ModelPath,
		configPath:   cfg.ConfigPath,
		format:       cfg.ModelFormat,
		inputSize:    image.Pt(cfg.ModelInputSize, cfg.ModelInputSize),
		minScore:     cfg.DetectorMinScore,
		nmsThreshold: cfg.NMSThreshold,
		logger:       logger,
	}
	if service.format == FormatSSD {
		service.inputSize = image.Pt(ssdInputSize, ssdInputSize)
	}

	if err := service.initializeNet(); err != nil {
		return nil, err
	}
	return service, nil
}

// initializeNet loads the DNN network and sets backend/target preferences.
func (s *DetectorService) initializeNet() error {
	switch s.format {
	case FormatYOLOv8, FormatSSD:
	default:
		return errors.Errorf("unsupported model format %q", s.format)
	}

	if _, err := os.Stat(s.modelPath); err != nil {
		return errors.Wrapf(err, "model file not found: %s", s.modelPath)
	}
	if s.configPath != "" {
		if _, err := os.Stat(s.configPath); err != nil {
			return errors.Wrapf(err, "config file not found: %s", s.configPath)
		}
	}

	net := gocv.ReadNet(s.modelPath, s.configPath)
	if net.Empty() {
		return errors.Errorf("failed to load network from %s", s.modelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return errors.New("failed to set preferable backend or target")
	}

	s.net = net
	s.logger.Info("Detection network initialized: %s (%s, %dx%d)", s.modelPath, s.format, s.inputSize.X, s.inputSize.Y)
	return nil
}

// Detect runs the network on the image stored at imagePath.
func (s *DetectorService) Detect(ctx context.Context, imagePath string) ([]models.RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat := gocv.IMRead(imagePath, gocv.IMReadColor)
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.Errorf("failed to decode image %s", imagePath)
	}

	return s.DetectMat(mat)
}

// DetectMat runs the network on an already decoded image.
func (s *DetectorService) DetectMat(mat gocv.Mat) ([]models.RawDetection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("detection network closed")
	}

	imgSize := image.Pt(mat.Cols(), mat.Rows())

	var blob gocv.Mat
	if s.format == FormatSSD {
		// SSD COCO graph expects [-1, 1] inputs
		blob = gocv.BlobFromImage(mat, 1.0/127.5, s.inputSize, gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	} else {
		blob = gocv.BlobFromImage(mat, 1.0/255.0, s.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	}
	defer blob.Close()

	s.net.SetInput(blob, "")
	output := s.net.Forward("")
	defer output.Close()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read network output")
	}

	var detections []models.RawDetection
	if s.format == FormatSSD {
		detections, err = postprocess.DecodeSSD(data, imgSize, s.minScore)
	} else {
		dims := output.Size()
		if len(dims) != 3 {
			return nil, errors.Errorf("unexpected yolov8 output dims %v", dims)
		}
		shape := postprocess.YOLOv8Shape{Channels: dims[1], Boxes: dims[2]}
		detections, err = postprocess.DecodeYOLOv8(data, shape, s.inputSize, imgSize, s.minScore, s.nmsThreshold)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode network output")
	}

	for _, d := range detections {
		s.logger.Info("Detected %s (%.2f)", d.ClassName, d.Confidence)
	}
	return detections, nil
}

// Close releases the network.
func (s *DetectorService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.net.Close()
}
