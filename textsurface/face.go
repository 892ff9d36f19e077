package textsurface

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Face rasterizes a line of monospace text.
type Face interface {
	// Ascent is the distance from the top of the line to the baseline.
	Ascent() int
	// Draw draws s with its baseline starting at (x, y) and returns the
	// horizontal advance in pixels.
	Draw(dst draw.Image, x, y int, s string, c color.Color) int
}

// Face names accepted by FaceByName.
const (
	FaceBasic  = "basic"
	FaceProggy = "proggy"
)

// FaceByName returns the face registered under name; "" selects basic.
func FaceByName(name string) (Face, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FaceBasic:
		return BasicFace(), nil
	case FaceProggy:
		return ProggyFace(), nil
	}
	return nil, fmt.Errorf("textsurface: unknown face %q", name)
}

// BasicFace is the 7x13 fixed face of golang.org/x/image.
func BasicFace() Face {
	return basicFace{face: basicfont.Face7x13}
}

type basicFace struct {
	face *basicfont.Face
}

func (f basicFace) Ascent() int {
	return f.face.Metrics().Ascent.Ceil()
}

func (f basicFace) Draw(dst draw.Image, x, y int, s string, c color.Color) int {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: f.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
	return d.Dot.X.Round() - x
}

// ProggyFace is ProggyTinySZ from tinyfont, smaller than BasicFace so a
// 64 pixel high panel fits more rows.
func ProggyFace() Face {
	return tinyFace{font: &proggy.TinySZ8pt7b, ascent: proggyAscent}
}

// proggyAscent is the cap height of TinySZ8pt7b plus one row of padding.
const proggyAscent = 9

type tinyFace struct {
	font   tinyfont.Fonter
	ascent int
}

func (f tinyFace) Ascent() int { return f.ascent }

func (f tinyFace) Draw(dst draw.Image, x, y int, s string, c color.Color) int {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	tinyfont.WriteLine(displayer{dst}, f.font, int16(x), int16(y), s, rgba)
	_, outbox := tinyfont.LineWidth(f.font, s)
	return int(outbox)
}

var _ drivers.Displayer = displayer{}

// displayer exposes a draw.Image as a tinygo drivers.Displayer.
type displayer struct {
	img draw.Image
}

func (d displayer) Size() (x, y int16) {
	b := d.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (d displayer) SetPixel(x, y int16, c color.RGBA) {
	d.img.Set(int(x), int(y), c)
}

func (d displayer) Display() error { return nil }
