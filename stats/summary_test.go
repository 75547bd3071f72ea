package stats

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/uyouii/eco-indicator/common"
	"gonum.org/v1/gonum/floats/scalar"
)

var testOptions = SummaryOptions{
	WindowSlots:          2,
	TrimCount:            2,
	TargetHeightFraction: 2,
	DisplayHeightPx:      100,
	BottomOffsetPx:       10,
}

func TestSummarize(t *testing.T) {
	series := seriesOf(8, 6, -2, 1, 4, 12, 10)
	res, err := Summarize(series, testOptions)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if res.Current != series[0] {
		t.Fatalf("current: got %+v", res.Current)
	}
	if res.Window.StartIndex != 2 || res.Window.Average != -0.5 {
		t.Fatalf("window: got %+v", res.Window)
	}
	if !res.WindowStart.Equal(series[2].Time) {
		t.Fatalf("window start: got %v", res.WindowStart)
	}
	if res.Minimum.Index != 2 || res.Minimum.Value != -2 || !res.MinimumTime.Equal(series[2].Time) {
		t.Fatalf("minimum: got %+v at %v", res.Minimum, res.MinimumTime)
	}
	// drops 12 and 10
	if !scalar.EqualWithinAbs(res.TrimmedMean, 17.0/5, 1e-12) {
		t.Fatalf("trimmed mean: got %v", res.TrimmedMean)
	}
	if res.ScaleErr != nil {
		t.Fatalf("unexpected scale error: %v", res.ScaleErr)
	}
	unit := 50.0 / 12
	if !scalar.EqualWithinAbs(res.Scale.GraphYUnit, unit, 1e-12) {
		t.Fatalf("scale: got %v", res.Scale.GraphYUnit)
	}
	if !scalar.EqualWithinAbs(res.GraphBottom, 100-2*unit-10, 1e-9) {
		t.Fatalf("graph bottom: got %v", res.GraphBottom)
	}
}

func TestSummarizeKeepsDegenerateScale(t *testing.T) {
	res, err := Summarize(seriesOf(-8, -6, -2, -1, -4, -12), testOptions)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if !errors.Is(res.ScaleErr, common.ErrorDegenerateScale) {
		t.Fatalf("expected degenerate scale, got %v", res.ScaleErr)
	}
	if res.Minimum.Index != 5 {
		t.Fatalf("minimum index: got %d", res.Minimum.Index)
	}
}

func TestSummarizeInsufficientData(t *testing.T) {
	if _, err := Summarize(seriesOf(1, 2, 3), testOptions); !errors.Is(err, common.ErrorInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
	if _, err := Summarize(nil, testOptions); !errors.Is(err, common.ErrorInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}
