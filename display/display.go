package display

import (
	"context"
	"image"
	"image/color"

	"github.com/pkg/errors"
	"github.com/uyouii/eco-indicator/common"
	"github.com/uyouii/eco-indicator/config"
	"github.com/uyouii/eco-indicator/utils"
	"go.uber.org/zap"
)

// StripPixels is the length of the LED strip.
const StripPixels = 8

// Strip drives an RGB LED strip. Brightness runs from 0 to 1.
type Strip interface {
	SetPixel(index int, r, g, b uint8, brightness float64)
	Clear()
	SetClearOnExit(clear bool)
	Show() error
}

// Panel drives a three colour e-paper panel using Palette.
type Panel interface {
	Width() int
	Height() int
	SetBorder(c uint8)
	SetImage(img image.Image)
	Show() error
}

// Palette indices of the e-paper colours.
const (
	White uint8 = 0
	Black uint8 = 1
	Red   uint8 = 2
)

var Palette = color.Palette{
	color.RGBA{0xff, 0xff, 0xff, 0xff},
	color.RGBA{0x00, 0x00, 0x00, 0xff},
	color.RGBA{0xd0, 0x00, 0x00, 0xff},
}

// Clear blanks whichever display the config selects. The panel is cycled
// through every colour to avoid ghosting.
func Clear(ctx context.Context, cfg *config.Config, strip Strip, panel Panel) error {
	logger := utils.GetLogger(ctx)

	switch cfg.DisplayType {
	case config.DisplayBlinkt:
		logger.Info("clearing Blinkt! display")
		strip.Clear()
		return strip.Show()

	case config.DisplayInkyPHAT:
		logger.Info("clearing Inky pHAT display")
		for _, c := range []uint8{Red, Black, White} {
			img := image.NewPaletted(image.Rect(0, 0, panel.Width(), panel.Height()), Palette)
			for i := range img.Pix {
				img.Pix[i] = c
			}
			panel.SetBorder(c)
			panel.SetImage(img)
			if err := panel.Show(); err != nil {
				logger.Error("panel Show failed", zap.Error(err))
				return err
			}
		}
		return nil
	}
	return errors.Wrapf(common.ErrorUnknownDisplay, "DisplayType %q", cfg.DisplayType)
}
