// Package config loads and validates the JSON configuration file described
// in SPEC_FULL.md §6: process-wide defaults, the loot generator's
// parameters, and the map table.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wricardo/loot-road-game/internal/geom"
	"github.com/wricardo/loot-road-game/internal/model"
)

// LootGeneratorSpec is the config file's lootGeneratorConfig block.
type LootGeneratorSpec struct {
	Period      float64 `json:"period"`
	Probability float64 `json:"probability"`
}

// RoadSpec is one road entry. Exactly one of X1 or Y1 must be set: X1
// makes it horizontal, Y1 makes it vertical.
type RoadSpec struct {
	X0 float64  `json:"x0"`
	Y0 float64  `json:"y0"`
	X1 *float64 `json:"x1,omitempty"`
	Y1 *float64 `json:"y1,omitempty"`
}

// BuildingSpec is one static decoration.
type BuildingSpec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// OfficeSpec is one collection point.
type OfficeSpec struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// MapSpec is one map entry. DogSpeed and BagCapacity are optional
// overrides; see OQ-2 in DESIGN.md.
type MapSpec struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Roads       []RoadSpec        `json:"roads"`
	Buildings   []BuildingSpec    `json:"buildings"`
	Offices     []OfficeSpec      `json:"offices"`
	LootTypes   []json.RawMessage `json:"lootTypes"`
	DogSpeed    *float64          `json:"dogSpeed,omitempty"`
	BagCapacity *int              `json:"bagCapacity,omitempty"`
}

// File is the parsed config file.
type File struct {
	DefaultDogSpeed     float64           `json:"defaultDogSpeed"`
	DefaultBagCapacity  int               `json:"defaultBagCapacity"`
	DogRetirementTime   float64           `json:"dogRetirementTime"` // seconds
	Maps                []MapSpec         `json:"maps"`
	LootGeneratorConfig LootGeneratorSpec `json:"lootGeneratorConfig"`
}

// Load reads and parses the config file at path and validates it.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return &f, nil
}

// Validate checks the structural invariants the config file must satisfy
// before it can be turned into a running Game.
func (f *File) Validate() error {
	if f.DefaultDogSpeed <= 0 {
		return fmt.Errorf("defaultDogSpeed must be positive, got %v", f.DefaultDogSpeed)
	}
	if f.DefaultBagCapacity <= 0 {
		return fmt.Errorf("defaultBagCapacity must be positive, got %v", f.DefaultBagCapacity)
	}
	if len(f.Maps) == 0 {
		return fmt.Errorf("at least one map is required")
	}
	if f.LootGeneratorConfig.Period <= 0 {
		return fmt.Errorf("lootGeneratorConfig.period must be positive, got %v", f.LootGeneratorConfig.Period)
	}
	if f.LootGeneratorConfig.Probability <= 0 || f.LootGeneratorConfig.Probability > 1 {
		return fmt.Errorf("lootGeneratorConfig.probability must be in (0,1], got %v", f.LootGeneratorConfig.Probability)
	}

	seen := make(map[string]bool, len(f.Maps))
	for _, m := range f.Maps {
		if m.ID == "" {
			return fmt.Errorf("map entry missing id")
		}
		if seen[m.ID] {
			return fmt.Errorf("duplicate map id %q", m.ID)
		}
		seen[m.ID] = true

		if len(m.Roads) == 0 {
			return fmt.Errorf("map %q has no roads", m.ID)
		}
		for _, r := range m.Roads {
			if (r.X1 == nil) == (r.Y1 == nil) {
				return fmt.Errorf("map %q: road at (%v,%v) must set exactly one of x1/y1", m.ID, r.X0, r.Y0)
			}
		}
	}

	return nil
}

// RetirementThresholdMs converts the config file's dogRetirementTime
// (seconds) to milliseconds.
func (f *File) RetirementThresholdMs() int64 {
	return int64(f.DogRetirementTime * 1000)
}

// BuildMaps converts every MapSpec into a model.Map ready for internal/game.
func (f *File) BuildMaps() ([]*model.Map, error) {
	out := make([]*model.Map, 0, len(f.Maps))
	for _, spec := range f.Maps {
		m, err := spec.toModel()
		if err != nil {
			return nil, fmt.Errorf("map %q: %w", spec.ID, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (spec MapSpec) toModel() (*model.Map, error) {
	roads := make([]geom.Road, 0, len(spec.Roads))
	for _, r := range spec.Roads {
		start := geom.Point{X: r.X0, Y: r.Y0}
		switch {
		case r.X1 != nil:
			roads = append(roads, geom.NewHorizontal(start, *r.X1))
		case r.Y1 != nil:
			roads = append(roads, geom.NewVertical(start, *r.Y1))
		}
	}

	buildings := make([]model.Building, 0, len(spec.Buildings))
	for _, b := range spec.Buildings {
		buildings = append(buildings, model.Building{X: b.X, Y: b.Y, W: b.W, H: b.H})
	}

	offices := make([]model.Office, 0, len(spec.Offices))
	for _, o := range spec.Offices {
		offices = append(offices, model.Office{
			ID:       o.ID,
			Position: geom.Point{X: o.X, Y: o.Y},
			OffsetX:  o.OffsetX,
			OffsetY:  o.OffsetY,
		})
	}

	lootTypes := make([]model.LootType, 0, len(spec.LootTypes))
	for i, raw := range spec.LootTypes {
		var lt struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}
		if err := json.Unmarshal(raw, &lt); err != nil {
			return nil, fmt.Errorf("loot type %d: %w", i, err)
		}
		lootTypes = append(lootTypes, model.LootType{
			Index: i,
			Name:  lt.Name,
			Value: lt.Value,
			Extra: string(raw),
		})
	}

	return &model.Map{
		ID:          spec.ID,
		Name:        spec.Name,
		Roads:       roads,
		Buildings:   buildings,
		Offices:     offices,
		LootTypes:   lootTypes,
		DogSpeed:    spec.DogSpeed,
		BagCapacity: spec.BagCapacity,
	}, nil
}
