package streak

import (
	"fmt"
	"slices"
)

// Thresholds is an ascending set of streak lengths whose crossing is reported
// back to the caller of a completion.
type Thresholds []int

// DefaultThresholds are the streak milestones celebrated by the app.
var DefaultThresholds = Thresholds{3, 7, 14, 30, 60, 100}

// NewThresholds validates and normalizes a threshold set: values must be
// positive and are returned sorted with duplicates removed.
func NewThresholds(values []int) (Thresholds, error) {
	out := make(Thresholds, 0, len(values))
	for _, v := range values {
		if v <= 0 {
			return nil, fmt.Errorf("milestone threshold must be positive, got %d", v)
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// Crossed reports whether the streak transition from oldStreak to newStreak
// crosses any threshold: true iff some m satisfies oldStreak < m <= newStreak.
// A jump over a threshold (6 -> 9 crossing 7) still reports it, and a reset
// to 1 reports nothing unless 1 is itself configured.
func (t Thresholds) Crossed(oldStreak, newStreak int) bool {
	for _, m := range t {
		if oldStreak < m && m <= newStreak {
			return true
		}
	}
	return false
}
