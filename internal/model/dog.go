package model

import "github.com/wricardo/loot-road-game/internal/geom"

// Direction is a compass facing. Dog.Speed always has exactly one non-zero
// component, so motion is always axis-aligned.
type Direction string

const (
	North Direction = "U"
	South Direction = "D"
	East  Direction = "R"
	West  Direction = "L"
)

// GathererWidth and OfficeWidth and LootWidth are the fixed collision radii
// used to build the gatherer/item tables each tick.
const (
	GathererWidth = 0.6
	OfficeWidth   = 0.5
	LootWidth     = 0.0
)

// Loot is a collectible item: a type index (score value comes from the
// owning map's loot-type table) and a position while on the ground.
type Loot struct {
	ID       int
	Type     int
	Position geom.Point
}

// Dog is one player's avatar.
type Dog struct {
	ID          int
	Name        string
	Position    geom.Point
	Speed       geom.Point // velocity vector, units per second
	Direction   Direction
	MapSpeed    float64
	BagCapacity int
	Bag         []Loot
	Score       int
	FullTimeMs  int64
	IdleTimeMs  int64
}

// SetDirection accepts one of {"L","R","U","D",""}. A non-empty command
// sets facing and speed to ±MapSpeed on the corresponding axis; an empty
// command zeros velocity but leaves facing unchanged.
func (d *Dog) SetDirection(cmd string) {
	switch Direction(cmd) {
	case North:
		d.Direction = North
		d.Speed = geom.Point{X: 0, Y: -d.MapSpeed}
	case South:
		d.Direction = South
		d.Speed = geom.Point{X: 0, Y: d.MapSpeed}
	case East:
		d.Direction = East
		d.Speed = geom.Point{X: d.MapSpeed, Y: 0}
	case West:
		d.Direction = West
		d.Speed = geom.Point{X: -d.MapSpeed, Y: 0}
	default:
		d.Speed = geom.Point{X: 0, Y: 0}
	}
}

// Tick advances counters, then runs the movement solver against the map's
// road network. It returns the pre-tick and post-tick positions so the
// caller can build this dog's gatherer segment for collision detection.
func (d *Dog) Tick(dtMs int64, m *Map) (pre, post geom.Point) {
	pre = d.Position

	d.FullTimeMs += dtMs
	if d.Speed.X == 0 && d.Speed.Y == 0 {
		d.IdleTimeMs += dtMs
	} else {
		d.IdleTimeMs = 0
	}

	next, stopped := solveMovement(pre, d.Speed, float64(dtMs)/1000, m)
	d.Position = next
	if stopped {
		d.Speed = geom.Point{}
	}

	return pre, d.Position
}

// solveMovement implements SPEC_FULL.md §4.2: if any road contains both the
// start and the unclamped candidate end, commit the candidate unchanged.
// Otherwise clamp against every road containing the start and keep the
// clamped point closest to the candidate in the direction of travel,
// reporting that the dog has hit a wall and should stop.
func solveMovement(p0, v geom.Point, dtSeconds float64, m *Map) (next geom.Point, stopped bool) {
	if v.X == 0 && v.Y == 0 {
		return p0, false
	}

	p1 := p0.Add(v.Scale(dtSeconds))

	for _, r := range m.Roads {
		if r.PointIsInside(p0) && r.PointIsInside(p1) {
			return p1, false
		}
	}

	best := p0
	bestDistSq := -1.0
	for _, r := range m.Roads {
		if !r.PointIsInside(p0) {
			continue
		}
		clamped := r.ClampEndpoint(p0, p1)
		distSq := clamped.Sub(p0).LenSq()
		if distSq > bestDistSq {
			bestDistSq = distSq
			best = clamped
		}
	}
	return best, true
}

// TakeLoot is permitted only when the bag is not already full.
func (d *Dog) TakeLoot(l Loot) bool {
	if len(d.Bag) >= d.BagCapacity {
		return false
	}
	d.Bag = append(d.Bag, l)
	return true
}

// UnloadBag sums the score value of every item in the bag, adds it to
// score, and empties the bag.
func (d *Dog) UnloadBag(m *Map) {
	for _, l := range d.Bag {
		d.Score += m.ScoreValue(l.Type)
	}
	d.Bag = d.Bag[:0]
}

// IsRetiring reports whether the dog has been idle for at least threshold.
func (d *Dog) IsRetiring(thresholdMs int64) bool {
	return d.IdleTimeMs >= thresholdMs
}
