// Package clocksource provides the wall clock and uptime counter used by the
// moonclock scheduler on a Linux host.
//
// Time acquisition itself (NTP, GPS, RTC) is left to the operating system;
// System only decides whether the OS clock can be trusted yet.
package clocksource

import (
	"errors"
	"fmt"
	"time"
)

// MinValidEpoch is 2024-01-01 00:00 UTC. A clock reading earlier than this
// has not been set since boot.
const MinValidEpoch = 1704067200

// ErrClockNotSet is returned by ForceSync while the OS clock reads earlier
// than MinValidEpoch.
var ErrClockNotSet = errors.New("clocksource: system clock not set")

// System reads the operating system clock. ForceSync succeeds once the OS
// clock has been set, typically by an NTP daemon.
type System struct {
	now    func() time.Time
	synced bool
	last   time.Time
}

// NewSystem returns a System reading time.Now.
func NewSystem() *System {
	return &System{now: time.Now}
}

// NewSystemWithTimeFunc returns a System reading now (for testing).
func NewSystemWithTimeFunc(now func() time.Time) *System {
	return &System{now: now}
}

// Now returns the current epoch seconds.
func (s *System) Now() int64 {
	return s.now().Unix()
}

// ForceSync checks the OS clock and marks the source synchronized.
func (s *System) ForceSync() error {
	t := s.now()
	if t.Unix() < MinValidEpoch {
		return fmt.Errorf("%w: reads %s", ErrClockNotSet, t.UTC().Format(time.RFC3339))
	}
	s.synced = true
	s.last = t
	return nil
}

// SyncedAtLeastOnce reports whether any ForceSync succeeded.
func (s *System) SyncedAtLeastOnce() bool {
	return s.synced
}

// LastSync returns the time of the last successful ForceSync.
func (s *System) LastSync() time.Time {
	return s.last
}

// Uptime is a millisecond counter since creation that wraps at 2^32, about
// every 49.7 days.
type Uptime struct {
	start time.Time
	since func(time.Time) time.Duration
}

// NewUptime starts the counter at zero.
func NewUptime() *Uptime {
	return &Uptime{start: time.Now(), since: time.Since}
}

// Millis returns the elapsed milliseconds modulo 2^32.
func (u *Uptime) Millis() uint32 {
	return uint32(u.since(u.start).Milliseconds())
}
