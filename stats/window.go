package stats

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/uyouii/eco-indicator/common"
	"github.com/uyouii/eco-indicator/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultTrimCount is how many of the highest slots are left out of the
// reference average line.
const DefaultTrimCount = 6

// FindLowestWindow returns the start index and average of the contiguous run
// of windowSlots values with the lowest average. The last start position is
// never considered: starts run over [0, len(values)-windowSlots-1).
// The earliest window wins a tie.
func FindLowestWindow(values []float64, windowSlots int) (*model.WindowResult, error) {
	if windowSlots < 1 {
		return nil, errors.Wrapf(common.ErrorInvalidValue, "window of %d slots", windowSlots)
	}
	if len(values) <= windowSlots+1 {
		return nil, errors.Wrapf(common.ErrorInsufficientData,
			"%d values for a window of %d slots", len(values), windowSlots)
	}

	res := &model.WindowResult{StartIndex: -1}
	n := float64(windowSlots)
	for i := 0; i < len(values)-windowSlots-1; i++ {
		avg := floats.Sum(values[i:i+windowSlots]) / n
		if res.StartIndex < 0 || avg < res.Average {
			res.StartIndex, res.Average = i, avg
		}
	}
	return res, nil
}

// FindExtremeSlot returns the minimum observation of the series, first one on ties.
func FindExtremeSlot(series model.Series) (*model.ExtremeSlot, error) {
	if series.IsEmpty() {
		return nil, errors.Wrap(common.ErrorInsufficientData, "empty series")
	}
	idx := floats.MinIdx(series.Values())
	return &model.ExtremeSlot{Index: idx, Value: series[idx].Value}, nil
}

// TrimmedAverage drops the trimCount highest values and averages the rest.
func TrimmedAverage(values []float64, trimCount int) (float64, error) {
	if trimCount < 0 {
		return 0, errors.Wrapf(common.ErrorInvalidValue, "trim count %d", trimCount)
	}
	if len(values) <= trimCount {
		return 0, errors.Wrapf(common.ErrorInsufficientData,
			"%d values, trimming %d", len(values), trimCount)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	return stat.Mean(sorted[trimCount:], nil), nil
}
