package display

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/pkg/errors"
	"github.com/uyouii/eco-indicator/utils"
	"go.uber.org/zap"
)

type Pixel struct {
	R, G, B    uint8
	Brightness float64
}

// LogStrip stands in for the LED strip and logs the frame on Show.
type LogStrip struct {
	ctx         context.Context
	Pixels      [StripPixels]Pixel
	ClearOnExit bool
	ShowCount   int
}

func NewLogStrip(ctx context.Context) *LogStrip {
	return &LogStrip{ctx: ctx, ClearOnExit: true}
}

func (s *LogStrip) SetPixel(index int, r, g, b uint8, brightness float64) {
	if index < 0 || index >= StripPixels {
		return
	}
	s.Pixels[index] = Pixel{R: r, G: g, B: b, Brightness: brightness}
}

func (s *LogStrip) Clear() {
	s.Pixels = [StripPixels]Pixel{}
}

func (s *LogStrip) SetClearOnExit(clear bool) {
	s.ClearOnExit = clear
}

func (s *LogStrip) Show() error {
	logger := utils.GetLogger(s.ctx)
	s.ShowCount++
	frame := make([]string, StripPixels)
	for i, p := range s.Pixels {
		frame[i] = fmt.Sprintf("#%02x%02x%02x@%.2f", p.R, p.G, p.B, p.Brightness)
	}
	logger.Info("strip frame", zap.Strings("pixels", frame))
	return nil
}

// PNGPanel stands in for the e-paper panel and writes each shown frame to Path.
type PNGPanel struct {
	Path      string
	width     int
	height    int
	Border    uint8
	Image     image.Image
	ShowCount int
}

func NewPNGPanel(path string, width, height int) *PNGPanel {
	return &PNGPanel{Path: path, width: width, height: height}
}

func (p *PNGPanel) Width() int  { return p.width }
func (p *PNGPanel) Height() int { return p.height }

func (p *PNGPanel) SetBorder(c uint8) {
	p.Border = c
}

func (p *PNGPanel) SetImage(img image.Image) {
	p.Image = img
}

func (p *PNGPanel) Show() error {
	p.ShowCount++
	if p.Path == "" || p.Image == nil {
		return nil
	}
	f, err := os.Create(p.Path)
	if err != nil {
		return errors.Wrap(err, "PNGPanel Create")
	}
	defer f.Close()
	if err := png.Encode(f, p.Image); err != nil {
		return errors.Wrap(err, "PNGPanel Encode")
	}
	return nil
}
