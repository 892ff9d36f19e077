// Package lunar computes the illuminated fraction of the moon from the mean
// synodic month. It is accurate to a few percent, enough for a clock face.
package lunar

import (
	"math"
	"time"
)

const (
	// SynodicMonth is the mean length of a lunation in days.
	SynodicMonth = 29.53058867

	// referenceNewMoon is the Julian date of the mean new moon of
	// 2000-01-06 (Meeus, lunation 0).
	referenceNewMoon = 2451550.09766

	unixEpochJD = 2440587.5
)

// JulianDate converts epoch seconds to a Julian date.
func JulianDate(epoch int64) float64 {
	return unixEpochJD + float64(epoch)/86400
}

// Age returns the days elapsed since the last new moon, in [0, SynodicMonth).
func Age(epoch int64) float64 {
	age := math.Mod(JulianDate(epoch)-referenceNewMoon, SynodicMonth)
	if age < 0 {
		age += SynodicMonth
	}
	return age
}

// Illumination returns the illuminated fraction in [0, 1]: 0 at new moon,
// 1 at full moon.
func Illumination(epoch int64) float64 {
	phase := Age(epoch) / SynodicMonth
	lit := (1 - math.Cos(2*math.Pi*phase)) / 2
	return math.Min(1, math.Max(0, lit))
}

// Oracle is the default phase oracle.
type Oracle struct{}

// PhaseAt implements moonclock.PhaseOracle.
func (Oracle) PhaseAt(epoch int64) float64 {
	return Illumination(epoch)
}

// Phase names the eight conventional phases.
type Phase uint8

const (
	NewMoon Phase = iota
	WaxingCrescent
	FirstQuarter
	WaxingGibbous
	FullMoon
	WaningGibbous
	LastQuarter
	WaningCrescent
)

var phaseNames = [...]string{
	"new moon", "waxing crescent", "first quarter", "waxing gibbous",
	"full moon", "waning gibbous", "last quarter", "waning crescent",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// PhaseOf returns the phase at t, each phase spanning an eighth of the
// cycle centered on its nominal instant.
func PhaseOf(t time.Time) Phase {
	eighth := SynodicMonth / 8
	return Phase(int(math.Floor(Age(t.Unix())/eighth+0.5)) % 8)
}
