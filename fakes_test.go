package moonclock

import (
	"errors"
	"image/color"
	"io"
	"log/slog"
)

// op is one recorded surface call.
type op struct {
	kind  string // "color", "cursor" or "text"
	color color.Color
	x, y  int16
	text  string
}

// recordSurface records every surface call.
type recordSurface struct {
	ops     []op
	flushes int
	err     error
}

func (s *recordSurface) SetColor(c color.Color) {
	s.ops = append(s.ops, op{kind: "color", color: c})
}

func (s *recordSurface) SetCursor(x, y int16) {
	s.ops = append(s.ops, op{kind: "cursor", x: x, y: y})
}

func (s *recordSurface) WriteText(text string) {
	s.ops = append(s.ops, op{kind: "text", text: text})
}

func (s *recordSurface) Flush() error {
	s.flushes++
	return s.err
}

func (s *recordSurface) reset() {
	s.ops = nil
	s.flushes = 0
}

// texts returns the foreground texts drawn at the origin of f.
func (s *recordSurface) texts(l Layout, f Field) []string {
	p := l.Placement(f)
	var out []string
	for i := 0; i+5 < len(s.ops); i++ {
		erase := s.ops[i : i+6]
		if erase[0].kind != "color" || erase[0].color != l.Background {
			continue
		}
		if erase[1].kind != "cursor" || erase[1].x != p.X || erase[1].y != p.Y {
			continue
		}
		if erase[4].kind == "cursor" && erase[4].x == p.X && erase[4].y == p.Y && erase[5].kind == "text" {
			out = append(out, erase[5].text)
		}
	}
	return out
}

// fakeClock is a scripted ClockSource.
type fakeClock struct {
	now      int64
	synced   bool
	failSync bool
	syncs    int
}

func (c *fakeClock) Now() int64 { return c.now }

func (c *fakeClock) ForceSync() error {
	c.syncs++
	if c.failSync {
		return errors.New("no reply")
	}
	c.synced = true
	return nil
}

func (c *fakeClock) SyncedAtLeastOnce() bool { return c.synced }

// fakeUptime is a manually advanced millisecond counter.
type fakeUptime struct {
	ms uint32
}

func (u *fakeUptime) Millis() uint32 { return u.ms }

// fullFrom is an oracle reporting full moon from a given timestamp on and
// half illumination before it.
type fullFrom struct {
	from  int64
	calls int
}

func (o *fullFrom) PhaseAt(epoch int64) float64 {
	o.calls++
	if epoch >= o.from {
		return 1
	}
	return 0.5
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
