package inky

import (
	"image"
	"math"

	"github.com/uyouii/eco-indicator/display"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// canvas draws axis aligned shapes and text onto a paletted frame.
type canvas struct {
	img  *image.Paletted
	face font.Face
}

func newCanvas(width, height int) *canvas {
	img := image.NewPaletted(image.Rect(0, 0, width, height), display.Palette)
	return &canvas{img: img, face: basicfont.Face7x13}
}

func (c *canvas) uniform(colour uint8) *image.Uniform {
	return image.NewUniform(display.Palette[colour])
}

// rect fills the box spanned by two corners, in either order.
func (c *canvas) rect(x0, y0, x1, y1 float64, colour uint8) {
	r := image.Rect(round(x0), round(y0), round(x1), round(y1)).Canon()
	draw.Draw(c.img, r, c.uniform(colour), image.Point{}, draw.Src)
}

func (c *canvas) hline(x0, x1, y float64, colour uint8) {
	c.rect(x0, y, x1+1, y+1, colour)
}

func (c *canvas) vline(x, y0, y1 float64, colour uint8) {
	c.rect(x, y0, x+1, y1+1, colour)
}

// text draws s with its top left corner at (x, y) and returns its width.
func (c *canvas) text(x, y float64, s string, colour uint8) int {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  c.uniform(colour),
		Face: c.face,
		Dot:  fixed.Point26_6{X: fixed.I(round(x)), Y: fixed.I(round(y)) + c.face.Metrics().Ascent},
	}
	d.DrawString(s)
	return d.MeasureString(s).Ceil()
}

func (c *canvas) textWidth(s string) int {
	return font.MeasureString(c.face, s).Ceil()
}

func round(f float64) int {
	return int(math.Round(f))
}
