package postprocess

import (
	"image"
	"sort"

	"fooddetect/internal/models"
)

// NMS keeps the highest scoring box of every cluster whose IoU exceeds
// threshold. Suppression only happens between boxes of the same class.
func NMS(detections []models.RawDetection, threshold float64) []models.RawDetection {
	if len(detections) == 0 {
		return detections
	}

	sorted := make([]models.RawDetection, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	result := make([]models.RawDetection, 0, len(sorted))
	used := make([]bool, len(sorted))

	for i := range sorted {
		if used[i] {
			continue
		}
		result = append(result, sorted[i])
		used[i] = true

		for j := i + 1; j < len(sorted); j++ {
			if used[j] || sorted[j].ClassName != sorted[i].ClassName {
				continue
			}
			if IoU(sorted[i].Box, sorted[j].Box) > threshold {
				used[j] = true
			}
		}
	}

	return result
}

// IoU calculates the Intersection over Union between two rectangles.
func IoU(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	interArea := inter.Dx() * inter.Dy()
	union := a.Dx()*a.Dy() + b.Dx()*b.Dy() - interArea
	if union <= 0 {
		return 0
	}
	return float64(interArea) / float64(union)
}
