// Package progress tracks the latest render completion percentage.
package progress

import (
	"math"
	"sync"
)

// Aggregator holds the most recent percentage reported by the render engine.
// Record and Percent may be called from different goroutines.
type Aggregator struct {
	mu      sync.Mutex
	percent int
}

// Record truncates fraction to a whole percentage and stores it, replacing
// whatever was there. Fractions outside [0, 1] are clamped.
func (a *Aggregator) Record(fraction float64) {
	p := toPercent(fraction)
	a.mu.Lock()
	a.percent = p
	a.mu.Unlock()
}

// Percent returns the latest recorded percentage in [0, 100].
func (a *Aggregator) Percent() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.percent
}

func toPercent(fraction float64) int {
	if math.IsNaN(fraction) || fraction <= 0 {
		return 0
	}
	if fraction >= 1 {
		return 100
	}
	return int(fraction * 100)
}
