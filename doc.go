// Package moonclock keeps a small status display current with five text
// fields: the time, the date, the last clock sync, the moon illumination and
// the date of the next full moon.
//
// # Rendering
//
// A Renderer remembers the text last drawn for each Field. Render does
// nothing when the text is unchanged; otherwise it writes the old text in the
// background color at the field origin and the new text in the field color:
//
//	SetColor(background) SetCursor(x, y) WriteText(previous)
//	SetColor(color)      SetCursor(x, y) WriteText(text)
//
// With a monospaced face this erases exactly the stale glyphs, so a panel on
// a slow bus only receives the few changed columns.
//
// # Scheduling
//
// Scheduler.Tick is called every TickInterval (100ms by default). Each tick
// formats and renders Time, Date and MoonIllumination. Once SyncInterval of
// uptime has elapsed (10 minutes by default) the tick first forces a clock
// sync; on success LastSync and NextFullMoon are rendered on that tick only.
// Uptime is a wrapping millisecond counter and elapsed time is computed with
// unsigned subtraction.
//
//	clock := clocksource.NewSystem()
//	s, err := moonclock.NewScheduler(clock, lunar.Oracle{}, clocksource.NewUptime(), surface, moonclock.Config{})
//	if err != nil {
//		return err
//	}
//	s.Initialize()
//	return s.Run(ctx)
//
// # Full moon search
//
// FindNextFull steps a day at a time from a start timestamp until the
// PhaseOracle reports at least FullThreshold, giving up after
// DefaultSearchDays with ErrSearchExhausted.
package moonclock
