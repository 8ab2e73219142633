// Package postprocess turns raw network output tensors into detections.
package postprocess

import (
	"fmt"
	"image"

	"fooddetect/internal/models"
)

// ssdStride is the row width of an SSD DetectionOutput tensor:
// [batch_id, class_id, confidence, x1, y1, x2, y2] with normalized corners.
const ssdStride = 7

// DecodeSSD reads SSD rows and scales boxes to the original image size.
func DecodeSSD(data []float32, imgSize image.Point, minScore float64) ([]models.RawDetection, error) {
	if len(data)%ssdStride != 0 {
		return nil, fmt.Errorf("ssd output length %d is not a multiple of %d", len(data), ssdStride)
	}

	var results []models.RawDetection
	for i := 0; i+ssdStride <= len(data); i += ssdStride {
		row := data[i : i+ssdStride]
		confidence := float64(row[2])
		if confidence < minScore {
			continue
		}
		x1 := int(row[3] * float32(imgSize.X))
		y1 := int(row[4] * float32(imgSize.Y))
		x2 := int(row[5] * float32(imgSize.X))
		y2 := int(row[6] * float32(imgSize.Y))

		results = append(results, models.RawDetection{
			ClassName:  SSDLabel(int(row[1])),
			Confidence: confidence,
			Box:        clampRect(image.Rect(x1, y1, x2, y2), imgSize),
		})
	}
	return results, nil
}

// YOLOv8Shape describes the channel-major [1, 4+classes, boxes] output of
// an ultralytics YOLOv8 export.
type YOLOv8Shape struct {
	Channels int
	Boxes    int
}

// DecodeYOLOv8 reads a YOLOv8 output tensor, picks the best class per
// candidate and applies per-class NMS. Box coordinates in the tensor are in
// input pixels and get scaled to the original image.
func DecodeYOLOv8(data []float32, shape YOLOv8Shape, inputSize, imgSize image.Point, minScore, nmsThreshold float64) ([]models.RawDetection, error) {
	if shape.Channels <= 4 || shape.Boxes <= 0 {
		return nil, fmt.Errorf("invalid yolov8 output shape %dx%d", shape.Channels, shape.Boxes)
	}
	if len(data) != shape.Channels*shape.Boxes {
		return nil, fmt.Errorf("yolov8 output length %d does not match shape %dx%d", len(data), shape.Channels, shape.Boxes)
	}

	at := func(channel, box int) float32 {
		return data[channel*shape.Boxes+box]
	}
	scaleX := float32(imgSize.X) / float32(inputSize.X)
	scaleY := float32(imgSize.Y) / float32(inputSize.Y)

	var candidates []models.RawDetection
	for b := 0; b < shape.Boxes; b++ {
		classID := 0
		best := at(4, b)
		for c := 5; c < shape.Channels; c++ {
			if score := at(c, b); score > best {
				best = score
				classID = c - 4
			}
		}
		if float64(best) < minScore {
			continue
		}

		cx, cy, w, h := at(0, b), at(1, b), at(2, b), at(3, b)
		x1 := int((cx - w/2) * scaleX)
		y1 := int((cy - h/2) * scaleY)
		x2 := int((cx + w/2) * scaleX)
		y2 := int((cy + h/2) * scaleY)

		candidates = append(candidates, models.RawDetection{
			ClassName:  YOLOLabel(classID),
			Confidence: float64(best),
			Box:        clampRect(image.Rect(x1, y1, x2, y2), imgSize),
		})
	}

	return NMS(candidates, nmsThreshold), nil
}

func clampRect(r image.Rectangle, size image.Point) image.Rectangle {
	return r.Intersect(image.Rect(0, 0, size.X, size.Y))
}
