package stats

import (
	"time"

	"github.com/pkg/errors"
	"github.com/uyouii/eco-indicator/common"
	"github.com/uyouii/eco-indicator/model"
)

// SummaryOptions are the window, trim and display geometry Summarize works with.
type SummaryOptions struct {
	WindowSlots          int
	TrimCount            int
	TargetHeightFraction float64
	DisplayHeightPx      int
	BottomOffsetPx       float64
}

// Summary holds everything one render pass derives from a series.
// Scale and GraphBottom are only meaningful when ScaleErr is nil.
type Summary struct {
	Current     model.Observation  `json:"current"`
	Window      model.WindowResult `json:"window"`
	WindowStart time.Time          `json:"window_start"`
	WindowSlots int                `json:"window_slots"`
	Minimum     model.ExtremeSlot  `json:"minimum"`
	MinimumTime time.Time          `json:"minimum_time"`
	TrimmedMean float64            `json:"trimmed_mean"`
	Scale       model.ScaleResult  `json:"scale"`
	GraphBottom float64            `json:"-"`
	ScaleErr    error              `json:"-"`
}

// Summarize runs every statistic over series. Data shortfalls fail the whole
// summary; a degenerate scale is kept in ScaleErr so only the graph is skipped.
func Summarize(series model.Series, opts SummaryOptions) (*Summary, error) {
	if series.IsEmpty() {
		return nil, errors.Wrap(common.ErrorInsufficientData, "empty series")
	}
	values := series.Values()

	window, err := FindLowestWindow(values, opts.WindowSlots)
	if err != nil {
		return nil, err
	}
	minimum, err := FindExtremeSlot(series)
	if err != nil {
		return nil, err
	}
	trimmed, err := TrimmedAverage(values, opts.TrimCount)
	if err != nil {
		return nil, err
	}

	res := &Summary{
		Current:     series[0],
		Window:      *window,
		WindowStart: series[window.StartIndex].Time,
		WindowSlots: opts.WindowSlots,
		Minimum:     *minimum,
		MinimumTime: series[minimum.Index].Time,
		TrimmedMean: trimmed,
	}

	scale, err := ComputeYScale(series, opts.TargetHeightFraction, opts.DisplayHeightPx)
	if err != nil {
		res.ScaleErr = err
		return res, nil
	}
	res.Scale = *scale
	res.GraphBottom = GraphBottom(minimum.Value, scale.GraphYUnit, opts.DisplayHeightPx, opts.BottomOffsetPx)
	return res, nil
}
