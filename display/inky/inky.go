package inky

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/uyouii/eco-indicator/common"
	"github.com/uyouii/eco-indicator/config"
	"github.com/uyouii/eco-indicator/display"
	"github.com/uyouii/eco-indicator/model"
	"github.com/uyouii/eco-indicator/stats"
	"github.com/uyouii/eco-indicator/utils"
	"go.uber.org/zap"
)

// Pixel size of the Inky pHAT variant with the larger panel.
const (
	DefaultWidth  = 250
	DefaultHeight = 122
)

const (
	// GraphHeightFraction: the highest bar reaches height/GraphHeightFraction.
	GraphHeightFraction = 2.5

	graphWidth    = 127 // graph area, before padding
	axisBottom    = 13
	sideColumn    = 130
	sidePrice     = 163
	sideRowHeight = 18
	nextSlots     = 3
)

// geometry scales the layout drawn for the 212x104 pHAT onto larger panels.
type geometry struct {
	xUnit int // bar width, integral to avoid aliasing
	xPad  float64
	yPad  float64
}

func geometryFor(width, height int) geometry {
	if width >= DefaultWidth && height >= DefaultHeight {
		return geometry{xUnit: 4, xPad: 1.25, yPad: 1.25}
	}
	return geometry{xUnit: 3, xPad: 1, yPad: 1}
}

// SummaryOptions are the statistics settings for a price graph on panel.
func SummaryOptions(cfg *config.Config, panel display.Panel) stats.SummaryOptions {
	g := geometryFor(panel.Width(), panel.Height())
	return stats.SummaryOptions{
		WindowSlots:          cfg.InkyPHAT.LowSlots(),
		TrimCount:            stats.DefaultTrimCount,
		TargetHeightFraction: GraphHeightFraction,
		DisplayHeightPx:      panel.Height(),
		BottomOffsetPx:       axisBottom * g.yPad,
	}
}

// Update draws the price graph and the current, next and cheapest slot
// figures. Too little data aborts the pass; a series with no positive value
// only loses the graph. Times are shown in loc.
func Update(ctx context.Context, panel display.Panel, cfg *config.Config, series model.Series,
	now time.Time, loc *time.Location, demo bool) (err error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("inky Update recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()))
			err = errors.Errorf("inky update panic: %v", r)
		}
	}()

	if cfg.Mode == config.ModeCarbon {
		return errors.Wrap(common.ErrorUnknownMode, "carbon mode not yet implemented for Inky display")
	}

	c := newCanvas(panel.Width(), panel.Height())
	if demo {
		logger.Info("demo mode not implemented for Inky display")
		return show(panel, c, display.White)
	}

	summary, err := stats.Summarize(series, SummaryOptions(cfg, panel))
	if err != nil {
		logger.Error("Summarize failed", zap.Error(err), zap.String("series", series.DebugString()))
		return err
	}
	logger.Info("cheapest window",
		zap.Float64("hours", cfg.InkyPHAT.LowSlotDuration),
		zap.Float64("average", utils.FormatFloat(summary.Window.Average, 1)),
		zap.String("start", localClock(summary.WindowStart, loc)))
	logger.Info("lowest priced slot",
		zap.Float64("price", summary.Minimum.Value),
		zap.String("start", localClock(summary.MinimumTime, loc)))

	g := geometryFor(panel.Width(), panel.Height())
	if summary.ScaleErr != nil {
		logger.Warn("cannot scale graph, skipping it", zap.Error(summary.ScaleErr))
	} else {
		drawGraph(c, g, cfg, series, summary, now, loc)
	}

	border := drawCurrent(ctx, c, g, cfg, series, loc)
	drawNext(ctx, c, g, cfg, series, now)
	drawWindow(c, g, cfg, series, summary, loc)

	return show(panel, c, border)
}

func show(panel display.Panel, c *canvas, border uint8) error {
	panel.SetBorder(border)
	panel.SetImage(c.img)
	return panel.Show()
}

func localClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}

func formatPrice(v float64) string {
	return fmt.Sprintf("%.1fp", v)
}

// drawGraph draws solid bars, their outline, the x axis with hour ticks and a
// dashed trimmed average line. The cheapest window is black, expensive slots red.
func drawGraph(c *canvas, g geometry, cfg *config.Config, series model.Series, summary *stats.Summary,
	now time.Time, loc *time.Location) {
	unit := summary.Scale.GraphYUnit
	bottom := summary.GraphBottom
	xu := float64(g.xUnit)
	limit := graphWidth * g.xPad
	window := summary.Window.StartIndex

	for i, o := range series {
		right := float64(i+1) * xu
		if right > limit {
			break
		}
		colour := display.White
		switch {
		case i >= window && i < window+summary.WindowSlots:
			colour = display.Black
		case o.Value > cfg.InkyPHAT.HighPrice:
			colour = display.Red
		}
		c.rect(right-xu, bottom, right, bottom-o.Value*unit, colour)
	}

	for i, o := range series {
		right := float64(i+1) * xu
		if right > limit {
			break
		}
		top := bottom - o.Value*unit
		c.hline(right-xu, right, top, display.Black)
		if i == 0 {
			continue
		}
		prevTop := bottom - series[i-1].Value*unit
		c.vline(right-xu, math.Min(top, prevTop), math.Max(top, prevTop), display.Black)
	}

	axisEnd := (graphWidth - 1) * g.xPad
	c.hline(0, axisEnd, bottom, display.Black)

	// half hour slots, so two bars per hour
	for h := 2; h < 24; h += 3 {
		x := (float64(h) - 0.5) * xu * 2
		label := now.Add(time.Duration(h) * time.Hour).In(loc).Format("15")
		w := float64(c.textWidth(label))
		if x+w/2 > (graphWidth+1)*g.xPad {
			break
		}
		c.vline(x, bottom, bottom+2*g.yPad, display.Black)
		c.text(x-w/2, bottom+2, label, display.Black)
	}

	avgY := bottom - summary.TrimmedMean*unit
	for x := 0; x < int(axisEnd); x++ {
		if x%6 == 2 {
			c.hline(float64(x), float64(x+2), avgY, display.Black)
		}
	}
}

// drawCurrent writes the current slot price and returns the border colour,
// red when the price is high.
func drawCurrent(ctx context.Context, c *canvas, g geometry, cfg *config.Config, series model.Series,
	loc *time.Location) uint8 {
	logger := utils.GetLogger(ctx)
	current := series[0]
	start := localClock(current.Time, loc)

	c.text(4*g.xPad, 0, "Price from "+start, display.Black)

	colour, border := display.Black, display.White
	if current.Value > cfg.InkyPHAT.HighPrice {
		colour, border = display.Red, display.Red
	}
	c.text(0, 16*g.yPad, formatPrice(current.Value), colour)
	logger.Info("current price", zap.String("from", start), zap.Float64("price", current.Value),
		zap.Bool("high", colour == display.Red))
	return border
}

// drawNext lists the next slots as minutes from now and price.
func drawNext(ctx context.Context, c *canvas, g geometry, cfg *config.Config, series model.Series, now time.Time) {
	if len(series) < 2 {
		return
	}
	minsUntilNext := int(math.Ceil(series[1].Time.Sub(now).Minutes()))
	utils.GetLogger(ctx).Info("minutes until next slot", zap.Int("minutes", minsUntilNext))

	for i := 0; i < nextSlots && i+1 < len(series); i++ {
		y := float64(i*sideRowHeight)*g.yPad + 3*g.yPad
		mins := minsUntilNext + i*int(model.SlotDuration.Minutes())
		c.text(sideColumn*g.xPad, y, fmt.Sprintf("+%d:", mins), display.Black)

		colour := display.Black
		if series[i+1].Value > cfg.InkyPHAT.HighPrice {
			colour = display.Red
		}
		c.text(sidePrice*g.xPad, y, formatPrice(series[i+1].Value), colour)
	}

	y := 5*g.yPad + nextSlots*sideRowHeight*g.yPad
	c.hline(sideColumn*g.xPad, float64(c.img.Bounds().Dx()-5), y, display.Black)
}

// drawWindow writes the cheapest window as "<hours>h @<avg>p" and its start
// as "<clock>/<hours from the current slot>h".
func drawWindow(c *canvas, g geometry, cfg *config.Config, series model.Series, summary *stats.Summary,
	loc *time.Location) {
	x := sideColumn * g.xPad
	y := 10*g.yPad + nextSlots*sideRowHeight*g.yPad
	c.text(x, y, fmt.Sprintf("%sh @%.1fp", utils.TrimFloat(cfg.InkyPHAT.LowSlotDuration), summary.Window.Average),
		display.Black)

	y = 16*g.yPad*0.6 + (nextSlots+1)*sideRowHeight*g.yPad
	ahead := utils.HoursBetween(series[0].Time, summary.WindowStart)
	c.text(x, y, fmt.Sprintf("%s/%sh", localClock(summary.WindowStart, loc), utils.TrimFloat(ahead)), display.Black)
}
