package moonclock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultTickInterval = 100 * time.Millisecond
	DefaultSyncInterval = 600 * time.Second
	DefaultPrecision    = 1
)

// ErrSyncFailed wraps the error of a failed ForceSync.
var ErrSyncFailed = errors.New("moonclock: time sync failed")

// State is the scheduler phase within a tick.
type State uint8

const (
	Idle State = iota
	Syncing
	Rendering
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Syncing:
		return "syncing"
	case Rendering:
		return "rendering"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// SyncState tracks the last successful synchronization. Pending is set for
// exactly one rendering pass after a sync.
type SyncState struct {
	LastSyncEpoch int64
	Interval      time.Duration
	Pending       bool
}

// Config is the static configuration of a Scheduler.
type Config struct {
	TickInterval time.Duration  // DefaultTickInterval when zero
	SyncInterval time.Duration  // DefaultSyncInterval when zero
	Precision    int            // illumination decimals, 1 or 2
	Location     *time.Location // UTC when nil
	Layout       Layout
	Search       FullMoonSearch
	Logger       *slog.Logger
}

// Scheduler runs the fast tick (time, date, illumination) and, every sync
// interval of uptime, the slow tick (sync, last-sync, next full moon).
//
// All state is owned by the goroutine calling Tick; nothing is locked.
type Scheduler struct {
	clock    ClockSource
	oracle   PhaseOracle
	uptime   Uptime
	surface  Surface
	renderer *Renderer
	cfg      Config
	log      *slog.Logger

	state    State
	sync     SyncState
	lastSlow uint32

	nextFull      MoonSearchResult
	nextFullReady bool
}

// NewScheduler wires the collaborators together. Initialize must be called
// before the first Tick.
func NewScheduler(clock ClockSource, oracle PhaseOracle, uptime Uptime, surface Surface, cfg Config) (*Scheduler, error) {
	if clock == nil || oracle == nil || uptime == nil || surface == nil {
		return nil, errors.New("moonclock: scheduler needs a clock, oracle, uptime and surface")
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.SyncInterval == 0 {
		cfg.SyncInterval = DefaultSyncInterval
	}
	if cfg.Precision == 0 {
		cfg.Precision = DefaultPrecision
	}
	if cfg.TickInterval < 0 || cfg.SyncInterval < 0 {
		return nil, errors.New("moonclock: intervals must be positive")
	}
	// Elapsed uptime is compared modulo 2^32 ms.
	if cfg.SyncInterval.Milliseconds() >= 1<<31 {
		return nil, fmt.Errorf("moonclock: sync interval %s too long", cfg.SyncInterval)
	}
	if cfg.Precision != 1 && cfg.Precision != 2 {
		return nil, fmt.Errorf("%w: precision %d", ErrOutOfRange, cfg.Precision)
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Layout.Background == nil {
		cfg.Layout = DefaultLayout()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Scheduler{
		clock:    clock,
		oracle:   oracle,
		uptime:   uptime,
		surface:  surface,
		renderer: NewRenderer(surface, cfg.Layout),
		cfg:      cfg,
		log:      log,
		sync:     SyncState{Interval: cfg.SyncInterval},
	}, nil
}

// Initialize clears all field state and performs the first last-sync and
// next-full-moon computation so the first Tick draws all five fields.
func (s *Scheduler) Initialize() {
	s.renderer.Reset()
	s.state = Idle
	s.sync = SyncState{Interval: s.cfg.SyncInterval}
	s.lastSlow = s.uptime.Millis()

	if !s.clock.SyncedAtLeastOnce() {
		if err := s.clock.ForceSync(); err != nil {
			s.log.Warn("initial time sync failed", "err", fmt.Errorf("%w: %w", ErrSyncFailed, err))
		}
	}
	if s.clock.SyncedAtLeastOnce() {
		s.completeSync()
		return
	}
	// Without a sync the last-sync field stays blank, the search still runs.
	s.refreshFullMoon(s.clock.Now())
}

// Tick runs one scheduler pass. It only returns surface flush errors; sync
// and search failures are logged and leave the previous text on screen.
func (s *Scheduler) Tick() error {
	now := s.uptime.Millis()
	// Unsigned subtraction stays correct across the 2^32 wrap.
	if time.Duration(now-s.lastSlow)*time.Millisecond >= s.cfg.SyncInterval {
		s.lastSlow = now
		s.slowTick()
	} else {
		s.setState(Rendering)
	}

	drew := s.renderFields()
	s.setState(Idle)

	if f, ok := s.surface.(Flusher); ok && drew {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("moonclock: flush: %w", err)
		}
	}
	return nil
}

// slowTick forces a sync. The timer has already been rearmed, so a failure
// is retried one interval later; the fast fields still render this tick.
func (s *Scheduler) slowTick() {
	s.setState(Syncing)
	if err := s.clock.ForceSync(); err != nil {
		s.log.Warn("time sync failed, keeping last values",
			"err", fmt.Errorf("%w: %w", ErrSyncFailed, err),
			"retry_in", s.cfg.SyncInterval)
		s.setState(Idle)
		return
	}
	s.completeSync()
	s.setState(Rendering)
}

func (s *Scheduler) setState(st State) {
	if s.state == st {
		return
	}
	s.log.Debug("state", "from", s.state, "to", st)
	s.state = st
}

// completeSync records a sync and refreshes the next full moon.
func (s *Scheduler) completeSync() {
	now := s.clock.Now()
	s.sync.LastSyncEpoch = now
	s.sync.Pending = true
	s.log.Info("time synchronized", "epoch", now)
	s.refreshFullMoon(now)
}

func (s *Scheduler) refreshFullMoon(now int64) {
	res, err := s.cfg.Search.Find(now, s.oracle)
	if err != nil {
		s.log.Error("next full moon search failed", "err", err)
		return
	}
	s.nextFull = res
	s.nextFullReady = true
	s.log.Debug("next full moon", "epoch", res.Timestamp, "illumination", res.Illumination)
}

// renderFields formats and renders in the fixed order: time, date,
// last-sync (on a sync edge), illumination, next full moon (after a search).
func (s *Scheduler) renderFields() bool {
	now := s.clock.Now()
	cal := Breakdown(now, s.cfg.Location)
	drew := false

	drew = s.render(Time, func() (string, error) {
		return FormatClock(cal.Hour, cal.Min, cal.Sec)
	}) || drew
	drew = s.render(Date, func() (string, error) {
		return FormatDate(cal.Weekday, cal.MDay, cal.Mon, cal.Year)
	}) || drew

	if s.sync.Pending {
		s.sync.Pending = false
		synced := Breakdown(s.sync.LastSyncEpoch, s.cfg.Location)
		drew = s.render(LastSync, func() (string, error) {
			return FormatLastSync(synced.Hour, synced.Min)
		}) || drew
	}

	drew = s.render(MoonIllumination, func() (string, error) {
		return FormatMoonIllumination(s.oracle.PhaseAt(now), s.cfg.Precision)
	}) || drew

	if s.nextFullReady {
		s.nextFullReady = false
		full := Breakdown(s.nextFull.Timestamp, s.cfg.Location)
		drew = s.render(NextFullMoon, func() (string, error) {
			return FormatNextFullMoon(full.MDay, full.Mon)
		}) || drew
	}
	return drew
}

func (s *Scheduler) render(f Field, format func() (string, error)) bool {
	text, err := format()
	if err != nil {
		s.log.Error("format failed", "field", f, "err", err)
		return false
	}
	if !s.renderer.Render(f, text) {
		return false
	}
	s.log.Debug("redraw", "field", f, "text", text)
	return true
}

// Run ticks every TickInterval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.cfg.TickInterval)
	defer t.Stop()

	if err := s.Tick(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := s.Tick(); err != nil {
				return err
			}
		}
	}
}

// State returns the phase the scheduler is in.
func (s *Scheduler) State() State { return s.state }

// Sync returns the synchronization bookkeeping.
func (s *Scheduler) Sync() SyncState { return s.sync }

// NextFullMoon returns the last successful search result.
func (s *Scheduler) NextFullMoon() MoonSearchResult { return s.nextFull }

// Renderer returns the renderer owning the field state.
func (s *Scheduler) Renderer() *Renderer { return s.renderer }
