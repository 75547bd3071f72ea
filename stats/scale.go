package stats

import (
	"math"

	"github.com/pkg/errors"
	"github.com/uyouii/eco-indicator/common"
	"github.com/uyouii/eco-indicator/model"
	"gonum.org/v1/gonum/floats"
)

// ComputeYScale maps the series maximum onto displayHeightPx/targetHeightFraction
// pixels and returns the resulting pixels per value unit.
func ComputeYScale(series model.Series, targetHeightFraction float64, displayHeightPx int) (*model.ScaleResult, error) {
	if series.IsEmpty() {
		return nil, errors.Wrap(common.ErrorInsufficientData, "empty series")
	}
	if targetHeightFraction <= 0 || math.IsNaN(targetHeightFraction) {
		return nil, errors.Wrapf(common.ErrorInvalidValue, "target height fraction %v", targetHeightFraction)
	}

	maxValue := floats.Max(series.Values())
	if maxValue <= 0 {
		return nil, errors.Wrapf(common.ErrorDegenerateScale, "series maximum %v", maxValue)
	}

	return &model.ScaleResult{
		GraphYUnit: (float64(displayHeightPx) / targetHeightFraction) / maxValue,
	}, nil
}

// GraphBottom is the y pixel of the graph's zero line. A negative minimum
// lifts the line by |minValue|*graphYUnit so bars below zero stay on screen.
func GraphBottom(minValue, graphYUnit float64, displayHeightPx int, bottomOffsetPx float64) float64 {
	if minValue < 0 {
		return float64(displayHeightPx) + minValue*graphYUnit - bottomOffsetPx
	}
	return float64(displayHeightPx) - bottomOffsetPx
}
