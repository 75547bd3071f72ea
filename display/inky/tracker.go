package inky

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/uyouii/eco-indicator/common"
	"github.com/uyouii/eco-indicator/display"
	"github.com/uyouii/eco-indicator/model"
	"github.com/uyouii/eco-indicator/utils"
	"go.uber.org/zap"
)

// TrackerDay is one daily Tracker rate pair, either price may be missing.
type TrackerDay struct {
	From        time.Time
	Electricity *float64
	Gas         *float64
}

// TrackerDays picks today's and, when already published, tomorrow's rates
// from rows ordered newest first.
func TrackerDays(rows []model.Row, now time.Time) (*TrackerDay, *TrackerDay) {
	var today, tomorrow *TrackerDay
	for i := range rows {
		day := &TrackerDay{From: rows[i].ValidFrom, Electricity: rows[i].Price, Gas: rows[i].GasPrice}
		if rows[i].ValidFrom.After(now) {
			tomorrow = day
			continue
		}
		today = day
		break
	}
	return today, tomorrow
}

// UpdateTracker shows today's and tomorrow's Tracker rates. Tomorrow's
// electricity price is red when it is higher than today's.
func UpdateTracker(ctx context.Context, panel display.Panel, rows []model.Row,
	now time.Time, loc *time.Location) error {
	logger := utils.GetLogger(ctx)

	today, tomorrow := TrackerDays(rows, now)
	if today == nil {
		return errors.Wrap(common.ErrorNoData, "no Tracker rate for today")
	}

	g := geometryFor(panel.Width(), panel.Height())
	c := newCanvas(panel.Width(), panel.Height())

	y := 2 * g.yPad
	c.text(4*g.xPad, y, "Tracker "+today.From.In(loc).Format("Mon 02 Jan"), display.Black)
	y += 20 * g.yPad
	c.text(4*g.xPad, y, "Today", display.Black)
	c.text(70*g.xPad, y, "elec "+rateText(today.Electricity), display.Black)
	c.text(70*g.xPad, y+14*g.yPad, "gas  "+rateText(today.Gas), display.Black)

	y += 40 * g.yPad
	c.text(4*g.xPad, y, "Tomorrow", display.Black)
	if tomorrow == nil {
		c.text(70*g.xPad, y, "not yet published", display.Black)
	} else {
		colour := display.Black
		if tomorrow.Electricity != nil && today.Electricity != nil && *tomorrow.Electricity > *today.Electricity {
			colour = display.Red
		}
		c.text(70*g.xPad, y, "elec "+rateText(tomorrow.Electricity), colour)
		c.text(70*g.xPad, y+14*g.yPad, "gas  "+rateText(tomorrow.Gas), display.Black)
	}

	logger.Info("tracker rates", zap.Any("today", today), zap.Any("tomorrow", tomorrow))
	return show(panel, c, display.White)
}

func rateText(v *float64) string {
	if v == nil {
		return "--"
	}
	return fmt.Sprintf("%.2fp", *v)
}
