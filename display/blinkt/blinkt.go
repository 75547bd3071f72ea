package blinkt

import (
	"context"

	"github.com/uyouii/eco-indicator/config"
	"github.com/uyouii/eco-indicator/display"
	"github.com/uyouii/eco-indicator/model"
	"github.com/uyouii/eco-indicator/utils"
	"go.uber.org/zap"
)

// Update colours one pixel per upcoming slot. Demo mode shows the configured
// colour levels instead, up to the strip length.
func Update(ctx context.Context, strip display.Strip, cfg *config.Config, series model.Series, demo bool) error {
	logger := utils.GetLogger(ctx)
	brightness := cfg.Blinkt.BrightnessFraction()

	strip.Clear()
	if demo {
		logger.Info("demo mode, showing configured colours", zap.Int("levels", len(cfg.Blinkt.Colours)))
		for i, level := range cfg.Blinkt.Colours {
			if i == display.StripPixels {
				break
			}
			logger.Info("colour level", zap.String("name", level.Name),
				zap.Uint8("r", level.R), zap.Uint8("g", level.G), zap.Uint8("b", level.B))
			strip.SetPixel(i, level.R, level.G, level.B, brightness)
		}
		strip.SetClearOnExit(false)
		return strip.Show()
	}

	if len(series) < display.StripPixels {
		logger.Warn("not enough data to fill the display, some pixels stay dark", zap.Int("slots", len(series)))
	}

	for i, o := range series {
		if i == display.StripPixels {
			break
		}
		level, ok := cfg.Blinkt.Colours.Match(cfg.Mode, o.Value)
		if !ok {
			logger.Warn("no colour level matches", zap.Int("pixel", i), zap.Float64("value", o.Value))
			continue
		}
		logger.Info("pixel", zap.Int("pixel", i), zap.Float64("value", o.Value), zap.String("level", level.Name))
		strip.SetPixel(i, level.R, level.G, level.B, brightness)
	}

	logger.Info("setting display")
	strip.SetClearOnExit(false)
	return strip.Show()
}
