// Package aggregate folds raw detector boxes into a per-class summary.
package aggregate

import (
	"fooddetect/internal/models"

	"github.com/shopspring/decimal"
)

const (
	// DefaultThreshold is the minimum confidence a detection needs to be counted.
	DefaultThreshold = 0.5
	// DefaultUnit is the quantity label attached to every item.
	DefaultUnit = "No.of"
)

// Aggregator groups detections by class name. It holds no mutable state and
// is safe for concurrent use.
type Aggregator struct {
	threshold float64
	unit      string
}

// New creates an Aggregator with the given inclusive threshold and unit label.
func New(threshold float64, unit string) *Aggregator {
	return &Aggregator{threshold: threshold, unit: unit}
}

// Default creates an Aggregator using DefaultThreshold and DefaultUnit.
func Default() *Aggregator {
	return New(DefaultThreshold, DefaultUnit)
}

// Threshold returns the configured confidence threshold.
func (a *Aggregator) Threshold() float64 {
	return a.threshold
}

// Unit returns the configured unit label.
func (a *Aggregator) Unit() string {
	return a.unit
}

type group struct {
	count int
	max   float64
}

// Aggregate drops detections below the threshold and returns one item per
// remaining class, in order of first occurrence. The result is never nil.
func (a *Aggregator) Aggregate(detections []models.RawDetection) []models.AggregatedItem {
	index := make(map[string]int)
	var order []string
	var groups []group

	for _, d := range detections {
		if d.Confidence < a.threshold {
			continue
		}
		i, ok := index[d.ClassName]
		if !ok {
			i = len(groups)
			index[d.ClassName] = i
			order = append(order, d.ClassName)
			groups = append(groups, group{})
		}
		g := &groups[i]
		g.count++
		if g.count == 1 || d.Confidence > g.max {
			g.max = d.Confidence
		}
	}

	items := make([]models.AggregatedItem, 0, len(groups))
	for i, name := range order {
		items = append(items, models.AggregatedItem{
			Name:       name,
			Quantity:   groups[i].count,
			Unit:       a.unit,
			Confidence: Round(groups[i].max),
		})
	}
	return items
}

// roundExponent keeps enough digits to hold the exact binary value of a
// float64 confidence, so a float just below a half is not mistaken for one.
const roundExponent = -30

// Round rounds the exact value of a confidence to two decimal places, with
// exact halves going to the even digit.
func Round(confidence float64) float64 {
	return decimal.NewFromFloatWithExponent(confidence, roundExponent).RoundBank(2).InexactFloat64()
}
