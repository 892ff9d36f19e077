// Package textsurface implements the moonclock text surface on an in-memory
// 4-bit framebuffer.
//
// Drawing only touches the framebuffer. Flush hands the whole frame to a
// Drawer, normally an *ssd1322.Dev, which works out the changed rectangle
// and sends only that over the bus.
package textsurface

import (
	"image"
	"image/color"

	"github.com/flavioheleno/moonclock/ssd1322/image4bit"
)

// Drawer receives composed frames. *ssd1322.Dev implements it.
type Drawer interface {
	Bounds() image.Rectangle
	Draw(dst image.Rectangle, src image.Image, sp image.Point) error
}

// Surface is a cursor based text surface. The cursor is the top-left corner
// of the next glyph; WriteText advances it past the drawn text.
type Surface struct {
	img  *image4bit.HorizontalNibble
	face Face
	out  Drawer

	x, y  int
	c     color.Color
	dirty bool
}

// New returns a blank surface covering bounds. out may be nil when the frame
// is consumed through Image.
func New(bounds image.Rectangle, face Face, out Drawer) *Surface {
	if face == nil {
		face = BasicFace()
	}
	img := image4bit.NewHorizontalNibble(bounds)
	return &Surface{
		img:  img,
		face: face,
		out:  out,
		x:    bounds.Min.X,
		y:    bounds.Min.Y,
		c:    image4bit.Gray4{Y: 15},
	}
}

// ForDrawer returns a surface the size of out.
func ForDrawer(out Drawer, face Face) *Surface {
	return New(out.Bounds(), face, out)
}

func (s *Surface) SetColor(c color.Color) {
	s.c = c
}

func (s *Surface) SetCursor(x, y int16) {
	s.x, s.y = int(x), int(y)
}

func (s *Surface) WriteText(text string) {
	if text == "" {
		return
	}
	s.x += s.face.Draw(s.img, s.x, s.y+s.face.Ascent(), text, s.c)
	s.dirty = true
}

// Cursor returns the current cursor position.
func (s *Surface) Cursor() image.Point {
	return image.Pt(s.x, s.y)
}

// Clear blanks the framebuffer.
func (s *Surface) Clear() {
	s.img.Fill(image4bit.Gray4{})
	s.dirty = true
}

// Dirty reports whether the framebuffer changed since the last Flush.
func (s *Surface) Dirty() bool {
	return s.dirty
}

// Flush sends the framebuffer to the Drawer if anything changed.
func (s *Surface) Flush() error {
	if !s.dirty || s.out == nil {
		s.dirty = false
		return nil
	}
	if err := s.out.Draw(s.img.Bounds(), s.img, s.img.Bounds().Min); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Image returns the framebuffer. It is updated in place.
func (s *Surface) Image() *image4bit.HorizontalNibble {
	return s.img
}
