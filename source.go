package moonclock

import "image/color"

// Surface is a write-only, monospaced text display. Text is drawn left to
// right from the cursor in the current color; there is no read-back.
type Surface interface {
	SetColor(c color.Color)
	SetCursor(x, y int16)
	WriteText(s string)
}

// Flusher is implemented by surfaces that buffer drawing and need an
// explicit push to the panel.
type Flusher interface {
	Flush() error
}

// ClockSource provides wall time in epoch seconds and forced synchronization
// against an external reference.
type ClockSource interface {
	Now() int64
	ForceSync() error
	SyncedAtLeastOnce() bool
}

// PhaseOracle returns the illuminated fraction of the moon, 0 (new) to
// 1 (full), at an epoch timestamp.
type PhaseOracle interface {
	PhaseAt(epoch int64) float64
}

// PhaseOracleFunc adapts a plain function to PhaseOracle.
type PhaseOracleFunc func(epoch int64) float64

func (f PhaseOracleFunc) PhaseAt(epoch int64) float64 { return f(epoch) }

// Uptime is a free-running millisecond counter that wraps at 2^32.
type Uptime interface {
	Millis() uint32
}
