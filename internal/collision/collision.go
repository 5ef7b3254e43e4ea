// Package collision implements the swept-circle-vs-stationary-circles
// gathering detector: given a set of moving gatherers (dogs, represented as
// segments swept over one tick) and a set of stationary items (loot on the
// ground, offices), it finds every pair that comes within collecting
// distance, in the time order the gatherer would have reached them.
package collision

import (
	"math"
	"sort"
)

// Point is a double-precision map coordinate.
type Point struct {
	X, Y float64
}

// Item is a stationary collision target: loot on the ground or an office.
type Item struct {
	Position Point
	Width    float64
}

// Gatherer is a moving dog, represented as the segment it swept during one
// tick.
type Gatherer struct {
	Start Point
	End   Point
	Width float64
}

// Event records one gatherer reaching one item within collecting distance.
type Event struct {
	ItemIndex     int
	GathererIndex int
	SqDistance    float64
	Time          float64 // projection ratio t in [0, 1]
}

// tryCollect projects item c onto the segment a->b and reports the squared
// distance from c to its closest point on the line, plus the projection
// ratio along the segment. Degenerate segments (a == b) return a ratio
// outside [0, 1] so the caller rejects them.
func tryCollect(a, b, c Point) (sqDistance, ratio float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy

	if lenSq == 0 {
		return math.Inf(1), -1
	}

	// projection of (c - a) onto (b - a), normalized by the segment's length.
	ux := c.X - a.X
	uy := c.Y - a.Y
	ratio = (ux*dx + uy*dy) / lenSq

	projX := a.X + ratio*dx
	projY := a.Y + ratio*dy

	ddx := c.X - projX
	ddy := c.Y - projY
	sqDistance = ddx*ddx + ddy*ddy

	return sqDistance, ratio
}

// FindGatherEvents returns every (gatherer, item) pair whose distance is
// within the combined collecting radius and whose projection parameter lies
// in [0, 1], sorted ascending by time, then by squared distance, then by
// gatherer index, then by item index.
func FindGatherEvents(gatherers []Gatherer, items []Item) []Event {
	var events []Event

	for gi, g := range gatherers {
		for ii, it := range items {
			sqDistance, ratio := tryCollect(g.Start, g.End, it.Position)
			if ratio < 0 || ratio > 1 {
				continue
			}

			radius := g.Width + it.Width
			if sqDistance > radius*radius {
				continue
			}

			events = append(events, Event{
				ItemIndex:     ii,
				GathererIndex: gi,
				SqDistance:    sqDistance,
				Time:          ratio,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if a.SqDistance != b.SqDistance {
			return a.SqDistance < b.SqDistance
		}
		if a.GathererIndex != b.GathererIndex {
			return a.GathererIndex < b.GathererIndex
		}
		return a.ItemIndex < b.ItemIndex
	})

	return events
}
