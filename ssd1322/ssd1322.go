package ssd1322

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/flavioheleno/moonclock/ssd1322/image4bit"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// DefaultHz is the SPI clock used when Opts.Hz is zero. The controller
// accepts up to 20MHz but long jumper wires on a clock build rarely do.
const DefaultHz = 10 * physic.MegaHertz

// ErrHalted is returned by every operation after Halt.
var ErrHalted = errors.New("ssd1322: halted")

// Opts is the configuration for the SSD1322 display.
type Opts struct {
	W int // Width (default: 256, must be even and ≤480)
	H int // Height (default: 64, must be ≤128)

	Rotated       bool // 180° rotation
	Sequential    bool // Sequential COM pin configuration
	SwapTopBottom bool // Swap top/bottom display halves

	Hz physic.Frequency // SPI clock, DefaultHz when zero

	RST gpio.PinIO // Reset pin (optional, nil if not used)
}

func (o *Opts) validate() error {
	if o.W <= 0 || o.W%2 != 0 || o.W > 480 {
		return errors.New("ssd1322: width must be even and between 2 and 480")
	}
	if o.H <= 0 || o.H > 128 {
		return errors.New("ssd1322: height must be between 1 and 128")
	}
	if o.Hz < 0 || o.Hz > 20*physic.MegaHertz {
		return fmt.Errorf("ssd1322: SPI clock %s out of range", o.Hz)
	}
	return nil
}

// Dev is the device handle for the SSD1322 display.
type Dev struct {
	c   conn.Conn
	dc  gpio.PinOut
	rst gpio.PinIO

	rect         image.Rectangle
	columnOffset int // the panel is centered in 480-column RAM

	// buffer mirrors controller RAM; next is the frame being composed.
	buffer []byte
	next   *image4bit.HorizontalNibble

	// lastUpdate is the rectangle sent by the most recent Draw or Write,
	// empty when the frame was unchanged.
	lastUpdate image.Rectangle
	sent       uint64

	halted bool
}

// NewSPI creates a new SSD1322 device connected via SPI.
//
// The port is configured Mode0, 8-bit, at opts.Hz. dc must be an output pin.
// opts can be nil to use defaults (256x64 display).
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{W: 256, H: 64}
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	hz := opts.Hz
	if hz == 0 {
		hz = DefaultHz
	}

	c, err := p.Connect(hz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("ssd1322: connect: %w", err)
	}

	d := newDev(c, dc, opts)
	if err := d.init(opts); err != nil {
		return nil, err
	}
	return d, nil
}

func newDev(c conn.Conn, dc gpio.PinOut, opts *Opts) *Dev {
	return &Dev{
		c:            c,
		dc:           dc,
		rst:          opts.RST,
		rect:         image.Rect(0, 0, opts.W, opts.H),
		columnOffset: (480 - opts.W) / 2,
		buffer:       make([]byte, opts.W*opts.H/2),
	}
}

// init sends the initialization sequence to the display.
func (d *Dev) init(opts *Opts) error {
	if d.rst != nil {
		if err := d.rst.Out(gpio.Low); err != nil {
			return fmt.Errorf("ssd1322: failed to pull RST low: %w", err)
		}
		time.Sleep(200 * time.Millisecond)

		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("ssd1322: failed to pull RST high: %w", err)
		}
		time.Sleep(200 * time.Millisecond)
	}

	if err := d.sendCommands(initSequence(opts)); err != nil {
		return err
	}
	if err := d.clearRAM(); err != nil {
		return err
	}
	return d.sendCommand(0xAF) // Display ON
}

// initSequence builds the power-up command list for opts.
func initSequence(opts *Opts) []byte {
	cmds := []byte{
		0xFD, 0x12, // Unlock command codes
		0xAE,       // Display OFF
		0xB3, 0xF2, // Clock divider and oscillator frequency
		0xCA, byte(opts.H - 1), // MUX ratio
		0xA2, 0x00, // Display offset
		0xA1, 0x00, // Start line
	}

	remap1, remap2 := byte(0x14), byte(0x11)
	if opts.Rotated {
		remap1 = 0x06
	}
	if opts.Sequential {
		remap2 |= 0x01
	}
	if opts.SwapTopBottom {
		remap2 |= 0x02
	}

	return append(cmds,
		0xA0, remap1, remap2, // Remap and dual COM mode
		0xAB, 0x01, // Function selection (enable internal VDD)
		0xB4, 0xA0, 0xFD, // VSL (display enhancement)
		0xC1, 0xFF, // Contrast (max)
		0xC7, 0x0F, // Master contrast
		0xB9,       // Use default grayscale table
		0xB1, 0xE2, // Phase length
		0xD1, 0x82, 0x20, // Display enhancements
		0xBB, 0x1F, // Pre-charge voltage
		0xB6, 0x08, // Second pre-charge period
		0xBE, 0x07, // VCOMH voltage
		0xA6, // Normal display mode
		0xA9, // Exit partial display mode
	)
}

// clearRAM zeroes the visible window of the controller RAM.
func (d *Dev) clearRAM() error {
	zeros := make([]byte, len(d.buffer))
	if err := d.writeRect(0, 0, d.rect.Dx(), d.rect.Dy(), zeros); err != nil {
		return err
	}
	copy(d.buffer, zeros)
	return nil
}

func (d *Dev) sendCommand(cmd byte) error {
	return d.sendCommands([]byte{cmd})
}

func (d *Dev) sendCommands(cmds []byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	return d.c.Tx(cmds, nil)
}

func (d *Dev) sendData(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	if err := d.c.Tx(data, nil); err != nil {
		return err
	}
	d.sent += uint64(len(data))
	return nil
}

// writeRect sets the RAM window to the rectangle and streams pixels into it.
func (d *Dev) writeRect(x, y, width, height int, pixels []byte) error {
	// Column addresses count groups of 4 pixels in 480-column RAM.
	colStart := byte((x + d.columnOffset) / 4)
	colEnd := byte((x + width - 1 + d.columnOffset) / 4)

	commands := []byte{
		0x15, colStart, colEnd, // Column address
		0x75, byte(y), byte(y + height - 1), // Row address
		0x5C, // Enable write to RAM
	}
	if err := d.sendCommands(commands); err != nil {
		return err
	}
	return d.sendData(pixels)
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image4bit.Gray4Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Write writes raw pixel data to the display in HorizontalNibble format.
// The data must be exactly d.rect.Dx() * d.rect.Dy() / 2 bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.halted {
		return 0, ErrHalted
	}
	if len(pixels) != len(d.buffer) {
		return 0, errors.New("ssd1322: invalid buffer size")
	}
	if err := d.writeFullFrame(pixels); err != nil {
		return 0, err
	}
	copy(d.buffer, pixels)
	if d.next != nil {
		copy(d.next.Pix, pixels)
	}
	d.lastUpdate = d.rect
	return len(pixels), nil
}

// Draw composes src into the frame and sends only the bounding rectangle of
// the pixels that differ from what the controller already shows.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return ErrHalted
	}
	d.lastUpdate = image.Rectangle{}

	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}

	if d.next == nil {
		d.next = image4bit.NewHorizontalNibble(d.rect)
		copy(d.next.Pix, d.buffer)
	}
	if dst != d.rect || sp != d.rect.Min || !d.next.CopyFrom(src) {
		draw.Draw(d.next, dst, src, sp, draw.Src)
	}

	minCol, maxCol, minRow, maxRow := d.calculateDiff()
	if minCol > maxCol {
		return nil
	}

	changed := d.extractRegion(minCol, maxCol, minRow, maxRow)
	if err := d.writeRect(minCol, minRow, maxCol-minCol+1, maxRow-minRow+1, changed); err != nil {
		return err
	}
	copy(d.buffer, d.next.Pix)
	d.lastUpdate = image.Rect(minCol, minRow, maxCol+1, maxRow+1)
	return nil
}

// LastUpdate returns the region sent by the last Draw or Write. It is empty
// when the last Draw found nothing to send.
func (d *Dev) LastUpdate() image.Rectangle {
	return d.lastUpdate
}

// BytesSent returns the number of pixel bytes streamed since creation.
func (d *Dev) BytesSent() uint64 {
	return d.sent
}

// calculateDiff compares controller RAM with the composed frame.
// Returns (minCol, maxCol, minRow, maxRow), with minCol > maxCol if unchanged.
// Columns are widened to 4-pixel groups, the RAM addressing unit.
func (d *Dev) calculateDiff() (minCol, maxCol, minRow, maxRow int) {
	width := d.rect.Dx()
	height := d.rect.Dy()
	stride := width / 2

	minRow, maxRow = height, -1
	minCol, maxCol = width, -1

	for y := 0; y < height; y++ {
		row := y * stride
		cur := d.buffer[row : row+stride]
		nxt := d.next.Pix[row : row+stride]
		if bytes.Equal(cur, nxt) {
			continue
		}
		minRow = min(minRow, y)
		maxRow = max(maxRow, y)
		for x := 0; x < stride; x++ {
			if cur[x] != nxt[x] {
				minCol = min(minCol, x*2)
				maxCol = max(maxCol, x*2+1)
			}
		}
	}
	if maxCol < 0 {
		return
	}

	off := d.columnOffset
	minCol = (minCol+off)/4*4 - off
	maxCol = (maxCol+off)/4*4 + 3 - off
	minCol = max(minCol, 0)
	maxCol = min(maxCol, width-1)
	return
}

// extractRegion copies the composed pixels of a rectangle row by row.
func (d *Dev) extractRegion(minCol, maxCol, minRow, maxRow int) []byte {
	byteWidth := (maxCol - minCol + 1) / 2
	stride := d.rect.Dx() / 2

	out := make([]byte, 0, byteWidth*(maxRow-minRow+1))
	for y := minRow; y <= maxRow; y++ {
		start := y*stride + minCol/2
		out = append(out, d.next.Pix[start:start+byteWidth]...)
	}
	return out
}

func (d *Dev) writeFullFrame(pixels []byte) error {
	return d.writeRect(0, 0, d.rect.Dx(), d.rect.Dy(), pixels)
}

// Clear blanks the panel and forgets the composed frame.
func (d *Dev) Clear() error {
	if d.halted {
		return ErrHalted
	}
	if err := d.clearRAM(); err != nil {
		return err
	}
	if d.next != nil {
		d.next.Fill(image4bit.Gray4{})
	}
	d.lastUpdate = d.rect
	return nil
}

// SetContrast sets the display contrast (0-255).
func (d *Dev) SetContrast(contrast byte) error {
	if d.halted {
		return ErrHalted
	}
	return d.sendCommands([]byte{0xC1, contrast})
}

// Invert inverts the display colors (black becomes white and vice versa).
func (d *Dev) Invert(invert bool) error {
	if d.halted {
		return ErrHalted
	}
	mode := byte(0xA6)
	if invert {
		mode = 0xA7
	}
	return d.sendCommand(mode)
}

// Halt powers off the display. Further calls fail with ErrHalted until a
// new device is created.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	d.halted = true
	return d.sendCommand(0xAE) // Display OFF
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ssd1322.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
