// Package model holds the data model of the simulation: maps, roads,
// offices, loot types, dogs, and loot items. Types here are the in-memory
// representation mutated during a Session.Tick and serialized by
// internal/snapshot.
package model

import "github.com/wricardo/loot-road-game/internal/geom"

// Office is a stationary point that empties a dog's bag into its score.
type Office struct {
	ID       string     `json:"id"`
	Position geom.Point `json:"position"`
	OffsetX  float64    `json:"offsetX"`
	OffsetY  float64    `json:"offsetY"`
}

// Building is a static obstacle rendered by clients; it has no effect on
// the simulation.
type Building struct {
	X, Y, W, H float64
}

// LootType is one entry in a map's loot-type table.
type LootType struct {
	Index int    `json:"-"`
	Name  string `json:"name"`
	Value int    `json:"value"`
	Extra string `json:"extra,omitempty"` // opaque descriptor echoed back to clients verbatim
}

// Map is the immutable, load-time description of one playable map: its
// road network, static decorations, and loot-type table. A Map is shared by
// every Session bound to it.
type Map struct {
	ID        string
	Name      string
	Roads     []geom.Road
	Buildings []Building
	Offices   []Office
	LootTypes []LootType

	// DogSpeed and BagCapacity are the map's explicit overrides of the
	// process-wide defaults. nil means "inherit default"; see OQ-2 in
	// DESIGN.md — a present override is honored even when it equals the
	// default, unlike the sentinel-comparison bug in the system this
	// server descends from.
	DogSpeed    *float64
	BagCapacity *int
}

// EffectiveDogSpeed resolves the map's dog speed against a process default.
func (m *Map) EffectiveDogSpeed(defaultSpeed float64) float64 {
	if m.DogSpeed != nil {
		return *m.DogSpeed
	}
	return defaultSpeed
}

// EffectiveBagCapacity resolves the map's bag capacity against a process
// default.
func (m *Map) EffectiveBagCapacity(defaultCapacity int) int {
	if m.BagCapacity != nil {
		return *m.BagCapacity
	}
	return defaultCapacity
}

// RandomSpawnPoint picks a uniformly random road, then a uniformly random
// distance along it, per SPEC_FULL.md §4.6.
func (m *Map) RandomSpawnPoint(pickRoad func(n int) int, pickDist func(max float64) float64) geom.Point {
	if len(m.Roads) == 0 {
		return geom.Point{}
	}
	road := m.Roads[pickRoad(len(m.Roads))]
	return road.RandomPointAt(pickDist(road.Len()))
}

// FirstSpawnPoint returns the start of the first road, used when randomized
// spawning is disabled so every dog begins at the same deterministic point.
func (m *Map) FirstSpawnPoint() geom.Point {
	if len(m.Roads) == 0 {
		return geom.Point{}
	}
	return m.Roads[0].Start
}

// PointOnRoads reports whether p lies inside any of the map's road
// rectangles.
func (m *Map) PointOnRoads(p geom.Point) bool {
	for _, r := range m.Roads {
		if r.PointIsInside(p) {
			return true
		}
	}
	return false
}

// ScoreValue returns the score value of a loot type index, or 0 if unknown.
func (m *Map) ScoreValue(typeIndex int) int {
	if typeIndex < 0 || typeIndex >= len(m.LootTypes) {
		return 0
	}
	return m.LootTypes[typeIndex].Value
}
