// Package lootgen implements the loot spawner described in SPEC_FULL.md
// §4.7: each tick, the probability that a unit of loot appears follows a
// Bernoulli trial repeated over the elapsed interval, so the expected spawn
// count is a fixed function of elapsed time, current loot, and current
// gatherer count, with no generator-side state carried between calls.
package lootgen

import "math"

// Generator computes the per-tick spawn count from two fixed parameters:
// the base interval over which probability is defined, and the probability
// of a spawn within one base interval.
type Generator struct {
	baseInterval float64 // milliseconds
	probability  float64 // (0, 1]
}

// New creates a Generator. baseIntervalMs is in milliseconds, probability is
// the spawn probability over one base interval, in (0, 1].
func New(baseIntervalMs float64, probability float64) *Generator {
	return &Generator{baseInterval: baseIntervalMs, probability: probability}
}

// Generate returns how many loot items to spawn now, given the elapsed
// milliseconds since the last call, the number of loot items currently on
// the ground, and the number of active gatherers (dogs):
//
//	n = floor((1 - (1-p)^(dt/interval)) * max(0, looters-loot))
//
// The result never causes lootCount+result to exceed looterCount.
func (g *Generator) Generate(dtMs float64, lootCount, looterCount int) int {
	missing := looterCount - lootCount
	if missing <= 0 {
		return 0
	}
	if g.baseInterval <= 0 {
		return missing
	}

	chance := 1 - math.Pow(1-g.probability, dtMs/g.baseInterval)
	n := int(math.Floor(chance * float64(missing)))

	if n > missing {
		n = missing
	}
	if n < 0 {
		n = 0
	}
	return n
}
