package image4bit

import (
	"image"
	"image/color"
)

// Gray4 is a 4-bit gray level; only the low nibble of Y is used.
type Gray4 struct {
	Y uint8
}

var (
	Black = Gray4{Y: 0x0}
	White = Gray4{Y: 0xF}
)

// RGBA scales the level by 0x1111, so 0xF maps to 0xFFFF.
func (c Gray4) RGBA() (r, g, b, a uint32) {
	y := uint32(c.Y&0x0F) * 0x1111
	return y, y, y, 0xFFFF
}

// Gray4Model converts colors to Gray4 through their 8-bit luma, rounding to
// the nearest level. Gray4 values round-trip unchanged.
var Gray4Model = color.ModelFunc(func(c color.Color) color.Color {
	if g, ok := c.(Gray4); ok {
		return Gray4{Y: g.Y & 0x0F}
	}
	y := uint16(color.GrayModel.Convert(c).(color.Gray).Y)
	return Gray4{Y: uint8((y*15 + 127) / 255)}
})

// HorizontalNibble is a 4-bit grayscale image in controller RAM layout.
// Each byte holds 2 pixels: high nibble = left pixel, low nibble = right pixel.
type HorizontalNibble struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

// NewHorizontalNibble returns a black image. The width must be even.
func NewHorizontalNibble(r image.Rectangle) *HorizontalNibble {
	if r.Empty() {
		return &HorizontalNibble{Rect: r}
	}
	if r.Dx()%2 != 0 {
		panic("image4bit: width must be even")
	}
	stride := r.Dx() / 2
	return &HorizontalNibble{
		Pix:    make([]byte, stride*r.Dy()),
		Stride: stride,
		Rect:   r,
	}
}

func (p *HorizontalNibble) ColorModel() color.Model { return Gray4Model }

func (p *HorizontalNibble) Bounds() image.Rectangle { return p.Rect }

// Opaque is always true, there is no alpha channel.
func (p *HorizontalNibble) Opaque() bool { return true }

func (p *HorizontalNibble) At(x, y int) color.Color {
	return p.Gray4At(x, y)
}

// Gray4At returns the level at (x, y), black outside the bounds.
func (p *HorizontalNibble) Gray4At(x, y int) Gray4 {
	i, shift, ok := p.nibble(x, y)
	if !ok {
		return Black
	}
	return Gray4{Y: p.Pix[i] >> shift & 0x0F}
}

func (p *HorizontalNibble) Set(x, y int, c color.Color) {
	p.SetGray4(x, y, Gray4Model.Convert(c).(Gray4))
}

// SetGray4 sets (x, y) without color conversion. Points outside the bounds
// are ignored.
func (p *HorizontalNibble) SetGray4(x, y int, c Gray4) {
	i, shift, ok := p.nibble(x, y)
	if !ok {
		return
	}
	p.Pix[i] = p.Pix[i]&^(0x0F<<shift) | (c.Y&0x0F)<<shift
}

// Fill sets every pixel to c.
func (p *HorizontalNibble) Fill(c Gray4) {
	v := c.Y & 0x0F
	for i := range p.Pix {
		p.Pix[i] = v<<4 | v
	}
}

// CopyFrom copies src into p when both share bounds and reports whether it
// did. It is the fast path for whole-frame updates.
func (p *HorizontalNibble) CopyFrom(src image.Image) bool {
	s, ok := src.(*HorizontalNibble)
	if !ok || s.Rect != p.Rect || s.Stride != p.Stride {
		return false
	}
	copy(p.Pix, s.Pix)
	return true
}

// Equal reports whether p and q have the same bounds and pixels.
func (p *HorizontalNibble) Equal(q *HorizontalNibble) bool {
	if p.Rect != q.Rect || len(p.Pix) != len(q.Pix) {
		return false
	}
	for i, b := range p.Pix {
		if q.Pix[i] != b {
			return false
		}
	}
	return true
}

// RGBA converts the image to an *image.RGBA, reusing dst when it has the
// same bounds.
func (p *HorizontalNibble) RGBA(dst *image.RGBA) *image.RGBA {
	if dst == nil || dst.Rect != p.Rect {
		dst = image.NewRGBA(p.Rect)
	}
	for y := p.Rect.Min.Y; y < p.Rect.Max.Y; y++ {
		o := dst.PixOffset(p.Rect.Min.X, y)
		for x := p.Rect.Min.X; x < p.Rect.Max.X; x++ {
			v := p.Gray4At(x, y).Y * 0x11
			copy(dst.Pix[o:o+4], []byte{v, v, v, 0xFF})
			o += 4
		}
	}
	return dst
}

// nibble locates (x, y): the byte index and the shift of its nibble, 4 for
// even (left) pixels and 0 for odd (right) ones.
func (p *HorizontalNibble) nibble(x, y int) (i int, shift uint, ok bool) {
	if !image.Pt(x, y).In(p.Rect) {
		return 0, 0, false
	}
	i = (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)/2
	if (x-p.Rect.Min.X)&1 == 0 {
		shift = 4
	}
	return i, shift, true
}
