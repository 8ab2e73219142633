package models

import "image"

// RawDetection is one box returned by the detector.
type RawDetection struct {
	ClassName  string          `json:"class_name"`
	Confidence float64         `json:"confidence"`
	Box        image.Rectangle `json:"-"`
}

// AggregatedItem summarizes every passing detection of one class.
type AggregatedItem struct {
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Unit       string  `json:"unit"`
	Confidence float64 `json:"confidence"`
}
