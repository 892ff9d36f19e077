// Package image4bit implements the 4-bit grayscale framebuffer used by the
// SSD1322 panel and by the moonclock text surface.
//
// Pixels are packed two per byte, left pixel in the high nibble:
//
//	Pixels: 0  1  2  3
//	Values: 5  10 3  12
//	Bytes:  0x5A     0x3C
//
// HorizontalNibble satisfies draw.Image, so glyph rasterizers from
// golang.org/x/image/font can draw into it directly:
//
//	img := image4bit.NewHorizontalNibble(image.Rect(0, 0, 256, 64))
//	img.Fill(image4bit.Gray4{})
//	img.SetGray4(10, 20, image4bit.Gray4{Y: 8})
//	_ = img.Gray4At(10, 20) // Gray4{Y: 8}
//
// The byte layout matches the controller RAM, so a row of Pix can be sent to
// the panel without conversion.
package image4bit
