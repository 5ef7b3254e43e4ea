// Package session implements one live map instance: its dogs, the loot on
// the ground, and the per-tick update pipeline that moves dogs, resolves
// pickups and deposits, spawns new loot, and retires idle dogs.
package session

import (
	"context"
	"math/rand/v2"

	"github.com/wricardo/loot-road-game/internal/collision"
	"github.com/wricardo/loot-road-game/internal/geom"
	"github.com/wricardo/loot-road-game/internal/model"
)

// LootGenerator decides how many loot items to spawn this tick. Satisfied
// by *lootgen.Generator.
type LootGenerator interface {
	Generate(dtMs float64, lootCount, looterCount int) int
}

// RecordSink persists one retired dog's final record. Satisfied by
// *store.Store.
type RecordSink interface {
	Insert(ctx context.Context, rec model.RetiredRecord) error
}

// Session is the live world bound to one Map.
type Session struct {
	ID         int
	Map        *model.Map
	Dogs       []*model.Dog
	GroundLoot []model.Loot

	lootGen    LootGenerator
	nextLootID func() int
	rng        *rand.Rand
}

// New creates an empty Session bound to m. nextLootID allocates a
// process-wide unique loot id (owned by Game, per invariant I7); rng drives
// loot type and spawn-position sampling.
func New(id int, m *model.Map, lootGen LootGenerator, nextLootID func() int, rng *rand.Rand) *Session {
	return &Session{
		ID:         id,
		Map:        m,
		lootGen:    lootGen,
		nextLootID: nextLootID,
		rng:        rng,
	}
}

// AddDog adds d to the session.
func (s *Session) AddDog(d *model.Dog) {
	s.Dogs = append(s.Dogs, d)
}

// DogByID returns the dog with the given id, or nil if it is not present in
// this session.
func (s *Session) DogByID(id int) *model.Dog {
	for _, d := range s.Dogs {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// Tick advances the session by dtMs, following the seven-step pipeline:
// move dogs, build the gatherer/item tables, run the collision detector,
// resolve pickups and deposits in event order, drop consumed loot, spawn
// new loot, and retire idle dogs. Retired dogs are removed from s.Dogs and
// their final record is written through sink; their ids are returned so
// the caller can drop the corresponding Players.
func (s *Session) Tick(ctx context.Context, dtMs int64, retireThresholdMs int64, sink RecordSink) ([]int, error) {
	if len(s.Dogs) == 0 {
		return nil, nil
	}

	gatherers := make([]collision.Gatherer, len(s.Dogs))
	for i, d := range s.Dogs {
		pre, post := d.Tick(dtMs, s.Map)
		gatherers[i] = collision.Gatherer{
			Start: toCollisionPoint(pre),
			End:   toCollisionPoint(post),
			Width: model.GathererWidth,
		}
	}

	lootCount := len(s.GroundLoot)
	items := make([]collision.Item, 0, lootCount+len(s.Map.Offices))
	for _, l := range s.GroundLoot {
		items = append(items, collision.Item{Position: toCollisionPoint(l.Position), Width: model.LootWidth})
	}
	for _, o := range s.Map.Offices {
		items = append(items, collision.Item{Position: toCollisionPoint(o.Position), Width: model.OfficeWidth})
	}

	events := collision.FindGatherEvents(gatherers, items)

	consumed := make(map[int]bool, lootCount)
	for _, e := range events {
		dog := s.Dogs[e.GathererIndex]
		if e.ItemIndex < lootCount {
			if consumed[e.ItemIndex] {
				continue
			}
			if dog.TakeLoot(s.GroundLoot[e.ItemIndex]) {
				consumed[e.ItemIndex] = true
			}
			continue
		}
		dog.UnloadBag(s.Map)
	}

	if len(consumed) > 0 {
		remaining := s.GroundLoot[:0]
		for i, l := range s.GroundLoot {
			if !consumed[i] {
				remaining = append(remaining, l)
			}
		}
		s.GroundLoot = remaining
	}

	spawnCount := s.lootGen.Generate(float64(dtMs), len(s.GroundLoot), len(s.Dogs))
	for i := 0; i < spawnCount; i++ {
		s.GroundLoot = append(s.GroundLoot, s.spawnLoot())
	}

	return s.retireIdleDogs(ctx, retireThresholdMs, sink)
}

func (s *Session) spawnLoot() model.Loot {
	typeIdx := 0
	if n := len(s.Map.LootTypes); n > 0 {
		typeIdx = s.rng.IntN(n)
	}
	pos := s.Map.RandomSpawnPoint(
		func(n int) int { return s.rng.IntN(n) },
		func(max float64) float64 { return s.rng.Float64() * max },
	)
	return model.Loot{ID: s.nextLootID(), Type: typeIdx, Position: pos}
}

// retireIdleDogs drops every dog past the idle threshold. A dog whose
// record fails to persist is left in the session for the next tick to
// retry rather than being dropped silently; the first persistence error
// encountered is returned after all dogs have been considered.
func (s *Session) retireIdleDogs(ctx context.Context, retireThresholdMs int64, sink RecordSink) ([]int, error) {
	var retiredIDs []int
	var firstErr error
	remaining := make([]*model.Dog, 0, len(s.Dogs))

	for _, d := range s.Dogs {
		if !d.IsRetiring(retireThresholdMs) {
			remaining = append(remaining, d)
			continue
		}

		rec := model.RetiredRecord{Name: d.Name, Score: d.Score, PlayTimeMs: d.FullTimeMs}
		if sink != nil {
			if err := sink.Insert(ctx, rec); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				remaining = append(remaining, d)
				continue
			}
		}
		retiredIDs = append(retiredIDs, d.ID)
	}

	s.Dogs = remaining
	return retiredIDs, firstErr
}

func toCollisionPoint(p geom.Point) collision.Point {
	return collision.Point{X: p.X, Y: p.Y}
}
