package moonclock

import (
	"errors"
	"fmt"
)

const (
	// FullThreshold is the illumination fraction treated as full moon.
	FullThreshold = 0.99

	// DefaultSearchDays bounds FindNextFull; about 13 lunations.
	DefaultSearchDays = 400

	secondsPerDay = 86400
)

// ErrSearchExhausted is returned when no full moon was found within the
// search window, which only happens with a misbehaving oracle.
var ErrSearchExhausted = errors.New("moonclock: full moon search exhausted")

// MoonSearchResult is the first sampled day at or above the threshold.
type MoonSearchResult struct {
	Timestamp    int64
	Illumination float64
}

// FullMoonSearch steps one day at a time from a start timestamp until the
// oracle reports an illumination of at least Threshold.
//
// Stepping by whole days gives the date of the full moon within ±12 hours.
type FullMoonSearch struct {
	Threshold float64 // FullThreshold when zero
	MaxDays   int     // DefaultSearchDays when zero
}

// Find returns the first start+k*86400 (k >= 0, k < MaxDays) whose
// illumination reaches the threshold.
func (s FullMoonSearch) Find(start int64, oracle PhaseOracle) (MoonSearchResult, error) {
	threshold := s.Threshold
	if threshold == 0 {
		threshold = FullThreshold
	}
	days := s.MaxDays
	if days <= 0 {
		days = DefaultSearchDays
	}

	t := start
	for i := 0; i < days; i++ {
		if lit := oracle.PhaseAt(t); lit >= threshold {
			return MoonSearchResult{Timestamp: t, Illumination: lit}, nil
		}
		t += secondsPerDay
	}
	return MoonSearchResult{}, fmt.Errorf("%w: %d days from %d", ErrSearchExhausted, days, start)
}

// FindNextFull searches with the default threshold and window.
func FindNextFull(start int64, oracle PhaseOracle) (MoonSearchResult, error) {
	return FullMoonSearch{}.Find(start, oracle)
}
