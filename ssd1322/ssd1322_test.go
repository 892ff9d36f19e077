package ssd1322

import (
	"errors"
	"image"
	"testing"

	"github.com/flavioheleno/moonclock/ssd1322/image4bit"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
)

// recordConn is a conn.Conn that keeps every write.
type recordConn struct {
	writes [][]byte
	err    error
}

func (r *recordConn) String() string       { return "record" }
func (r *recordConn) Duplex() conn.Duplex  { return conn.Half }
func (r *recordConn) Tx(w, _ []byte) error {
	if r.err != nil {
		return r.err
	}
	r.writes = append(r.writes, append([]byte(nil), w...))
	return nil
}

func newTestDev(w, h int) (*Dev, *recordConn) {
	c := &recordConn{}
	return newDev(c, &gpiotest.Pin{N: "DC"}, &Opts{W: w, H: h}), c
}

func TestOptsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Opts
		wantErr bool
	}{
		{"valid 256x64", Opts{W: 256, H: 64}, false},
		{"valid 128x64", Opts{W: 128, H: 64}, false},
		{"valid 2x1 (minimum)", Opts{W: 2, H: 1}, false},
		{"odd width", Opts{W: 255, H: 64}, true},
		{"width zero", Opts{W: 0, H: 64}, true},
		{"width > 480", Opts{W: 512, H: 64}, true},
		{"height zero", Opts{W: 256, H: 0}, true},
		{"height > 128", Opts{W: 256, H: 200}, true},
		{"rotated (valid)", Opts{W: 256, H: 64, Rotated: true}, false},
		{"explicit clock", Opts{W: 256, H: 64, Hz: 4 * physic.MegaHertz}, false},
		{"clock too fast", Opts{W: 256, H: 64, Hz: 40 * physic.MegaHertz}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInitSequenceRemap(t *testing.T) {
	tests := []struct {
		name       string
		opts       Opts
		wantRemap1 byte
		wantRemap2 byte
	}{
		{"default", Opts{W: 256, H: 64}, 0x14, 0x11},
		{"rotated", Opts{W: 256, H: 64, Rotated: true}, 0x06, 0x11},
		{"sequential and swapped", Opts{W: 256, H: 64, Sequential: true, SwapTopBottom: true}, 0x14, 0x13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := initSequence(&tt.opts)
			for i := 0; i+2 < len(cmds); i++ {
				if cmds[i] != 0xA0 {
					continue
				}
				if cmds[i+1] != tt.wantRemap1 || cmds[i+2] != tt.wantRemap2 {
					t.Errorf("remap = 0x%02X 0x%02X, want 0x%02X 0x%02X",
						cmds[i+1], cmds[i+2], tt.wantRemap1, tt.wantRemap2)
				}
				return
			}
			t.Error("remap command 0xA0 not found")
		})
	}
}

func TestInitSequenceMuxRatio(t *testing.T) {
	cmds := initSequence(&Opts{W: 256, H: 48})
	if cmds[5] != 0xCA || cmds[6] != 47 {
		t.Errorf("MUX ratio = 0x%02X %d, want 0xCA 47", cmds[5], cmds[6])
	}
}

func TestDevBounds(t *testing.T) {
	dev, _ := newTestDev(256, 64)
	want := image.Rect(0, 0, 256, 64)
	if got := dev.Bounds(); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
}

func TestDevColorModel(t *testing.T) {
	dev := &Dev{}
	if dev.ColorModel() != image4bit.Gray4Model {
		t.Error("ColorModel() did not return Gray4Model")
	}
}

func TestDevString(t *testing.T) {
	dev, _ := newTestDev(256, 64)
	want := "ssd1322.Dev{256x64}"
	if got := dev.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestDevHalt(t *testing.T) {
	dev, c := newTestDev(256, 64)

	if err := dev.Halt(); err != nil {
		t.Fatalf("Halt() = %v", err)
	}
	if last := c.writes[len(c.writes)-1]; len(last) != 1 || last[0] != 0xAE {
		t.Errorf("Halt sent %X, want AE", last)
	}
	if err := dev.Halt(); err != nil {
		t.Errorf("second Halt() = %v, want nil", err)
	}

	if err := dev.SetContrast(100); !errors.Is(err, ErrHalted) {
		t.Errorf("SetContrast = %v, want ErrHalted", err)
	}
	if err := dev.Invert(true); !errors.Is(err, ErrHalted) {
		t.Errorf("Invert = %v, want ErrHalted", err)
	}
	if _, err := dev.Write(make([]byte, 256*64/2)); !errors.Is(err, ErrHalted) {
		t.Errorf("Write = %v, want ErrHalted", err)
	}
	if err := dev.Draw(dev.Bounds(), image.NewRGBA(dev.Bounds()), image.Point{}); !errors.Is(err, ErrHalted) {
		t.Errorf("Draw = %v, want ErrHalted", err)
	}
	if err := dev.Clear(); !errors.Is(err, ErrHalted) {
		t.Errorf("Clear = %v, want ErrHalted", err)
	}
}

func TestDevColumnOffset(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		wantOffset int
	}{
		{"256 width", 256, 112},
		{"128 width", 128, 176},
		{"480 width (full)", 480, 0},
		{"64 width", 64, 208},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, _ := newTestDev(tt.width, 64)
			if dev.columnOffset != tt.wantOffset {
				t.Errorf("columnOffset for width %d = %d, want %d", tt.width, dev.columnOffset, tt.wantOffset)
			}
		})
	}
}

func TestWriteBufferSizeValidation(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		bufferSize int
	}{
		{"256x64 too small", 256, 64, 256*64/2 - 1},
		{"256x64 too large", 256, 64, 256*64/2 + 1},
		{"128x64 too small", 128, 64, 128*64/2 - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, _ := newTestDev(tt.width, tt.height)
			_, err := dev.Write(make([]byte, tt.bufferSize))
			if err == nil {
				t.Fatal("Write should fail with invalid buffer size")
			}
			if err.Error() != "ssd1322: invalid buffer size" {
				t.Errorf("Write error = %v, want 'ssd1322: invalid buffer size'", err)
			}
		})
	}
}

func TestWriteFullFrame(t *testing.T) {
	dev, c := newTestDev(8, 2)
	pixels := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	n, err := dev.Write(pixels)
	if err != nil {
		t.Fatalf("Write() = %v", err)
	}
	if n != len(pixels) {
		t.Errorf("Write() n = %d, want %d", n, len(pixels))
	}
	if got := c.writes[len(c.writes)-1]; string(got) != string(pixels) {
		t.Errorf("data = %X, want %X", got, pixels)
	}
	if dev.LastUpdate() != dev.Bounds() {
		t.Errorf("LastUpdate() = %v, want full frame", dev.LastUpdate())
	}
	if dev.BytesSent() != uint64(len(pixels)) {
		t.Errorf("BytesSent() = %d, want %d", dev.BytesSent(), len(pixels))
	}
}

func TestCalculateDiffNoChanges(t *testing.T) {
	dev := &Dev{
		rect:   image.Rect(0, 0, 4, 2),
		buffer: make([]byte, 4),
		next:   image4bit.NewHorizontalNibble(image.Rect(0, 0, 4, 2)),
	}

	minCol, maxCol, _, _ := dev.calculateDiff()
	if minCol <= maxCol {
		t.Errorf("No changes should result in minCol > maxCol, got %d > %d", minCol, maxCol)
	}
}

func TestCalculateDiffWithChanges(t *testing.T) {
	dev := &Dev{
		rect:   image.Rect(0, 0, 8, 2),
		buffer: make([]byte, 8),
		next: &image4bit.HorizontalNibble{
			Pix:    []byte{0x00, 0x00, 0xAB, 0x00, 0x00, 0x00, 0x00, 0x00},
			Stride: 4,
			Rect:   image.Rect(0, 0, 8, 2),
		},
	}

	minCol, maxCol, minRow, maxRow := dev.calculateDiff()

	// Byte 2 covers pixels 4-5, widened to the 4-pixel group 4-7.
	if minCol != 4 || maxCol != 7 {
		t.Errorf("cols = %d..%d, want 4..7", minCol, maxCol)
	}
	if minRow != 0 || maxRow != 0 {
		t.Errorf("rows = %d..%d, want 0..0", minRow, maxRow)
	}
}

func TestExtractRegion(t *testing.T) {
	dev := &Dev{
		rect: image.Rect(0, 0, 8, 2),
		next: &image4bit.HorizontalNibble{
			Pix:    []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77},
			Stride: 4,
			Rect:   image.Rect(0, 0, 8, 2),
		},
	}

	region := dev.extractRegion(2, 5, 0, 1)
	want := []byte{0x11, 0x22, 0x55, 0x66}
	if string(region) != string(want) {
		t.Errorf("extractRegion = %X, want %X", region, want)
	}
}

func TestDrawSendsOnlyChangedRegion(t *testing.T) {
	dev, c := newTestDev(16, 4)

	img := image4bit.NewHorizontalNibble(dev.Bounds())
	img.SetGray4(9, 2, image4bit.Gray4{Y: 15})

	if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
		t.Fatalf("Draw() = %v", err)
	}
	want := image.Rect(8, 2, 12, 3)
	if got := dev.LastUpdate(); got != want {
		t.Errorf("LastUpdate() = %v, want %v", got, want)
	}
	if got := c.writes[len(c.writes)-1]; len(got) != 2 || got[0] != 0x0F {
		t.Errorf("data = %X, want 0F00", got)
	}

	// Drawing the same frame again transfers nothing.
	before := len(c.writes)
	if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
		t.Fatalf("Draw() = %v", err)
	}
	if len(c.writes) != before {
		t.Errorf("unchanged Draw issued %d transfers", len(c.writes)-before)
	}
	if !dev.LastUpdate().Empty() {
		t.Errorf("LastUpdate() = %v, want empty", dev.LastUpdate())
	}
}

func TestDrawPropagatesBusError(t *testing.T) {
	dev, c := newTestDev(16, 4)
	c.err = errors.New("bus down")

	img := image4bit.NewHorizontalNibble(dev.Bounds())
	img.Fill(image4bit.Gray4{Y: 3})
	if err := dev.Draw(dev.Bounds(), img, image.Point{}); err == nil {
		t.Error("Draw should report the bus error")
	}
}

func TestClearResetsComposedFrame(t *testing.T) {
	dev, _ := newTestDev(16, 4)

	img := image4bit.NewHorizontalNibble(dev.Bounds())
	img.Fill(image4bit.Gray4{Y: 9})
	if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
		t.Fatalf("Draw() = %v", err)
	}
	if err := dev.Clear(); err != nil {
		t.Fatalf("Clear() = %v", err)
	}
	for i, b := range dev.buffer {
		if b != 0 {
			t.Fatalf("buffer[%d] = 0x%02X after Clear, want 0", i, b)
		}
	}
	if got := dev.next.Gray4At(0, 0); got.Y != 0 {
		t.Errorf("next frame not cleared: %v", got)
	}
}

func TestRSTOptionInOpts(t *testing.T) {
	rst := &gpiotest.Pin{N: "RST", L: gpio.High}
	dev := newDev(&recordConn{}, &gpiotest.Pin{N: "DC"}, &Opts{W: 256, H: 64, RST: rst})
	if dev.rst != rst {
		t.Error("RST pin was not kept on the device")
	}
}

func TestDrawSubRectangle(t *testing.T) {
	dev, _ := newTestDev(16, 4)

	img := image4bit.NewHorizontalNibble(dev.Bounds())
	img.Fill(image4bit.White)
	if err := dev.Draw(image.Rect(4, 0, 8, 4), img, image.Pt(4, 0)); err != nil {
		t.Fatalf("Draw() = %v", err)
	}
	if got, want := dev.LastUpdate(), image.Rect(4, 0, 8, 4); got != want {
		t.Errorf("LastUpdate() = %v, want %v", got, want)
	}
	if dev.next.Gray4At(3, 0) != image4bit.Black || dev.next.Gray4At(8, 3) != image4bit.Black {
		t.Error("Draw wrote outside the destination rectangle")
	}
}
