// Package game implements the Game aggregate: the registry of maps and
// live sessions, global defaults, the single-writer tick driver, and
// snapshot I/O. It is the one entry point the transport layer talks to.
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/wricardo/loot-road-game/internal/geom"
	"github.com/wricardo/loot-road-game/internal/lootgen"
	"github.com/wricardo/loot-road-game/internal/model"
	"github.com/wricardo/loot-road-game/internal/players"
	"github.com/wricardo/loot-road-game/internal/session"
	"github.com/wricardo/loot-road-game/internal/snapshot"
)

// ErrMapNotFound is returned by Join and GetMap for an unknown map id.
var ErrMapNotFound = errors.New("game: map not found")

// ErrNotInTestMode is returned by Tick when the process runs an internal
// ticker and external tick requests are disallowed.
var ErrNotInTestMode = errors.New("game: server is not running in test mode")

// Defaults holds the process-wide fallbacks a Map may override.
type Defaults struct {
	DogSpeed          float64
	BagCapacity       int
	RetireThresholdMs int64
}

// Config bundles everything Game needs at construction.
type Config struct {
	Defaults           Defaults
	LootBaseIntervalMs float64
	LootProbability    float64
	RandomizeSpawn     bool
	TestMode           bool
	// AutoSaveOnTick, when true, makes Tick call SaveSnapshot after every
	// tick (manual_save in the design this server descends from).
	AutoSaveOnTick bool
	SnapshotPath   string

	// TickObserver, if set, is called once per session after every tick
	// with that session's current dogs and ground loot count. It runs on
	// the serial executor, so it must not block or call back into Game.
	TickObserver func(sessionID int, dogs []*model.Dog, groundLootCount int)
}

// RecordSink persists retired dogs. Satisfied by *store.Store.
type RecordSink = session.RecordSink

// Game owns every map, every live session, the player registry, and the id
// counters. All mutation is serialized onto a single goroutine; see exec.
type Game struct {
	cfg Config

	maps     map[string]*model.Map
	mapOrder []string

	sessions       map[int]*session.Session
	sessionByMapID map[string]int
	sessionOrder   []int

	players *players.Registry
	lootGen *lootgen.Generator
	sink    RecordSink
	rng     *rand.Rand

	nextSessionID int
	nextDogID     int
	nextLootID    int
	nextPlayerID  int

	ops chan func()
	done chan struct{}
}

// New creates a Game and starts its serial executor goroutine. Call Close
// to stop it.
func New(cfg Config, sink RecordSink, rng *rand.Rand) *Game {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	g := &Game{
		cfg:            cfg,
		maps:           make(map[string]*model.Map),
		sessions:       make(map[int]*session.Session),
		sessionByMapID: make(map[string]int),
		players:        players.NewRegistry(),
		lootGen:        lootgen.New(cfg.LootBaseIntervalMs, cfg.LootProbability),
		sink:           sink,
		rng:            rng,
		ops:            make(chan func()),
		done:           make(chan struct{}),
	}
	go g.run()
	return g
}

func (g *Game) run() {
	defer close(g.done)
	for op := range g.ops {
		op()
	}
}

// Close stops the serial executor, draining any pending operations first.
func (g *Game) Close() {
	close(g.ops)
	<-g.done
}

// exec runs fn on the serial executor and blocks until it completes.
func (g *Game) exec(fn func()) {
	reply := make(chan struct{})
	g.ops <- func() {
		fn()
		close(reply)
	}
	<-reply
}

// AddMap registers a map, keyed by its id, in load order. Must be called
// before New's executor receives any Join/Tick traffic (startup only), so
// it runs without going through exec.
func (g *Game) AddMap(m *model.Map) {
	if _, exists := g.maps[m.ID]; !exists {
		g.mapOrder = append(g.mapOrder, m.ID)
	}
	g.maps[m.ID] = m
}

// MapSummary is the {id, name} pair returned by the map listing endpoint.
type MapSummary struct {
	ID   string
	Name string
}

// ListMaps returns every registered map in load order. Maps are immutable
// after AddMap, so this reads g.maps directly without going through exec.
func (g *Game) ListMaps() []MapSummary {
	out := make([]MapSummary, 0, len(g.mapOrder))
	for _, id := range g.mapOrder {
		out = append(out, MapSummary{ID: id, Name: g.maps[id].Name})
	}
	return out
}

// GetMap returns the full map definition for id.
func (g *Game) GetMap(id string) (*model.Map, error) {
	m, ok := g.maps[id]
	if !ok {
		return nil, ErrMapNotFound
	}
	return m, nil
}

// SessionIDForMap returns the id of the live session bound to mapID, if one
// has been created yet (the first Join against a map creates its session).
// Used to route spectator websocket subscriptions by map id.
func (g *Game) SessionIDForMap(mapID string) (int, bool) {
	var id int
	var ok bool
	g.exec(func() {
		id, ok = g.sessionByMapID[mapID]
	})
	return id, ok
}

// Join creates a Dog on the named map, spawns it, finds or creates that
// map's Session, adds the dog, and mints a Player with a fresh token.
func (g *Game) Join(userName, mapID string) (*players.Player, error) {
	var p *players.Player
	var err error

	g.exec(func() {
		m, ok := g.maps[mapID]
		if !ok {
			err = ErrMapNotFound
			return
		}

		dogID := g.nextDogID
		g.nextDogID++

		spawn := m.FirstSpawnPoint()
		if g.cfg.RandomizeSpawn {
			spawn = m.RandomSpawnPoint(
				func(n int) int { return g.rng.IntN(n) },
				func(max float64) float64 { return g.rng.Float64() * max },
			)
		}

		dog := &model.Dog{
			ID:          dogID,
			Name:        userName,
			Position:    spawn,
			MapSpeed:    m.EffectiveDogSpeed(g.cfg.Defaults.DogSpeed),
			BagCapacity: m.EffectiveBagCapacity(g.cfg.Defaults.BagCapacity),
			Direction:   model.North,
		}

		sess := g.sessionForMap(m)
		sess.AddDog(dog)

		playerID := g.nextPlayerID
		g.nextPlayerID++
		p, err = players.Add(g.players, playerID, dog.ID, sess.ID)
	})

	return p, err
}

// sessionForMap returns the existing session bound to m, creating one if
// this is the map's first join. Must run inside exec.
func (g *Game) sessionForMap(m *model.Map) *session.Session {
	if id, ok := g.sessionByMapID[m.ID]; ok {
		return g.sessions[id]
	}

	id := g.nextSessionID
	g.nextSessionID++

	sess := session.New(id, m, g.lootGen, g.allocLootID, g.rng)
	g.sessions[id] = sess
	g.sessionByMapID[m.ID] = id
	g.sessionOrder = append(g.sessionOrder, id)
	return sess
}

func (g *Game) allocLootID() int {
	id := g.nextLootID
	g.nextLootID++
	return id
}

// SetDirection looks up the player owning token and sets its dog's
// movement command.
func (g *Game) SetDirection(token, cmd string) error {
	var err error
	g.exec(func() {
		p, e := g.players.FindByToken(token)
		if e != nil {
			err = e
			return
		}
		sess, ok := g.sessions[p.SessionID]
		if !ok {
			err = players.ErrUnknownToken
			return
		}
		dog := sess.DogByID(p.DogID)
		if dog == nil {
			err = players.ErrUnknownToken
			return
		}
		dog.SetDirection(cmd)
	})
	return err
}

// Tick advances every session by dtMs, in registration order, then drops
// any player whose dog retired during this tick. If not in test mode this
// returns ErrNotInTestMode — external callers must not drive simulation
// time when an internal ticker is running.
func (g *Game) Tick(ctx context.Context, dtMs int64) error {
	if !g.cfg.TestMode {
		return ErrNotInTestMode
	}
	return g.tickLocked(ctx, dtMs)
}

// InternalTick is identical to Tick but bypasses the test-mode check; it is
// called by the process's own ticker goroutine when one is configured.
func (g *Game) InternalTick(ctx context.Context, dtMs int64) error {
	return g.tickLocked(ctx, dtMs)
}

func (g *Game) tickLocked(ctx context.Context, dtMs int64) error {
	var firstErr error
	g.exec(func() {
		for _, id := range g.sessionOrder {
			sess := g.sessions[id]
			retired, err := sess.Tick(ctx, dtMs, g.cfg.Defaults.RetireThresholdMs, g.sink)
			for _, dogID := range retired {
				g.players.RemoveByDogID(dogID)
			}
			if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("session %d tick: %w", id, err)
			}
			if g.cfg.TickObserver != nil {
				g.cfg.TickObserver(id, sess.Dogs, len(sess.GroundLoot))
			}
		}
		if firstErr == nil && g.cfg.AutoSaveOnTick && g.cfg.SnapshotPath != "" {
			if err := g.saveSnapshotLocked(g.cfg.SnapshotPath); err != nil {
				firstErr = err
			}
		}
	})
	return firstErr
}

// ViewState returns, for the session the given token's player belongs to,
// every dog and every ground loot item currently in it.
func (g *Game) ViewState(token string) ([]*model.Dog, []model.Loot, error) {
	var dogs []*model.Dog
	var loot []model.Loot
	var err error

	g.exec(func() {
		p, e := g.players.FindByToken(token)
		if e != nil {
			err = e
			return
		}
		sess, ok := g.sessions[p.SessionID]
		if !ok {
			err = players.ErrUnknownToken
			return
		}
		dogs = append(dogs, sess.Dogs...)
		loot = append(loot, sess.GroundLoot...)
	})

	return dogs, loot, err
}

// PlayerNames returns, for the session the given token's player belongs
// to, a map from dog id to dog name.
func (g *Game) PlayerNames(token string) (map[int]string, error) {
	var names map[int]string
	var err error

	g.exec(func() {
		p, e := g.players.FindByToken(token)
		if e != nil {
			err = e
			return
		}
		sess, ok := g.sessions[p.SessionID]
		if !ok {
			err = players.ErrUnknownToken
			return
		}
		names = make(map[int]string, len(sess.Dogs))
		for _, d := range sess.Dogs {
			names[d.ID] = d.Name
		}
	})

	return names, err
}

// Authenticate resolves a bearer token to its Player, without side effects.
func (g *Game) Authenticate(token string) (*players.Player, error) {
	var p *players.Player
	var err error
	g.exec(func() {
		p, err = g.players.FindByToken(token)
	})
	return p, err
}

// SaveSnapshot captures the whole world and atomically publishes it to
// path.
func (g *Game) SaveSnapshot(path string) error {
	var err error
	g.exec(func() {
		err = g.saveSnapshotLocked(path)
	})
	return err
}

// saveSnapshotLocked must run inside exec.
func (g *Game) saveSnapshotLocked(path string) error {
	var w snapshot.World

	for _, id := range g.sessionOrder {
		sess := g.sessions[id]

		sr := snapshot.SessionRecord{ID: sess.ID, MapID: sess.Map.ID}
		for _, l := range sess.GroundLoot {
			w.Loot = append(w.Loot, lootRecord(l))
			sr.GroundLootIDs = append(sr.GroundLootIDs, l.ID)
		}
		for _, d := range sess.Dogs {
			w.Dogs = append(w.Dogs, dogRecord(d))
			sr.DogIDs = append(sr.DogIDs, d.ID)
			for _, l := range d.Bag {
				w.Loot = append(w.Loot, lootRecord(l))
			}
		}
		w.Sessions = append(w.Sessions, sr)
	}

	for _, p := range g.players.All() {
		w.Players = append(w.Players, snapshot.PlayerRecord{
			ID: p.ID, Token: p.Token, DogID: p.DogID, SessionID: p.SessionID,
		})
	}

	return snapshot.Save(path, w)
}

// LoadSnapshot restores the whole world from path. Every map referenced by
// the snapshot must already be registered via AddMap.
func (g *Game) LoadSnapshot(path string) error {
	w, err := snapshot.Load(path)
	if err != nil {
		return err
	}

	var loadErr error
	g.exec(func() {
		loadErr = g.loadSnapshotLocked(w)
	})
	return loadErr
}

func (g *Game) loadSnapshotLocked(w snapshot.World) error {
	lootByID := make(map[int]model.Loot, len(w.Loot))
	for _, lr := range w.Loot {
		lootByID[lr.ID] = model.Loot{ID: lr.ID, Type: lr.Type, Position: geom.Point{X: lr.X, Y: lr.Y}}
		if lr.ID >= g.nextLootID {
			g.nextLootID = lr.ID + 1
		}
	}

	dogsByID := make(map[int]*model.Dog, len(w.Dogs))
	for _, dr := range w.Dogs {
		d := &model.Dog{
			ID:          dr.ID,
			Name:        dr.Name,
			Position:    geom.Point{X: dr.X, Y: dr.Y},
			Speed:       geom.Point{X: dr.VX, Y: dr.VY},
			Direction:   model.Direction(dr.Direction),
			MapSpeed:    dr.MapSpeed,
			BagCapacity: dr.BagCapacity,
			Score:       dr.Score,
			FullTimeMs:  dr.FullTimeMs,
			IdleTimeMs:  dr.IdleTimeMs,
		}
		for _, lootID := range dr.BagLootIDs {
			if l, ok := lootByID[lootID]; ok {
				d.Bag = append(d.Bag, l)
			}
		}
		dogsByID[d.ID] = d
		if dr.ID >= g.nextDogID {
			g.nextDogID = dr.ID + 1
		}
	}

	for _, sr := range w.Sessions {
		m, ok := g.maps[sr.MapID]
		if !ok {
			return fmt.Errorf("game: snapshot references unknown map %q", sr.MapID)
		}

		sess := session.New(sr.ID, m, g.lootGen, g.allocLootID, g.rng)
		for _, lootID := range sr.GroundLootIDs {
			if l, ok := lootByID[lootID]; ok {
				sess.GroundLoot = append(sess.GroundLoot, l)
			}
		}
		for _, dogID := range sr.DogIDs {
			if d, ok := dogsByID[dogID]; ok {
				sess.AddDog(d)
			}
		}

		g.sessions[sr.ID] = sess
		g.sessionByMapID[sr.MapID] = sr.ID
		g.sessionOrder = append(g.sessionOrder, sr.ID)
		if sr.ID >= g.nextSessionID {
			g.nextSessionID = sr.ID + 1
		}
	}

	for _, pr := range w.Players {
		g.players.Restore(&players.Player{ID: pr.ID, Token: pr.Token, DogID: pr.DogID, SessionID: pr.SessionID})
		if pr.ID >= g.nextPlayerID {
			g.nextPlayerID = pr.ID + 1
		}
	}

	return nil
}

func lootRecord(l model.Loot) snapshot.LootRecord {
	return snapshot.LootRecord{ID: l.ID, Type: l.Type, X: l.Position.X, Y: l.Position.Y}
}

func dogRecord(d *model.Dog) snapshot.DogRecord {
	return snapshot.DogRecord{
		ID:          d.ID,
		Name:        d.Name,
		X:           d.Position.X,
		Y:           d.Position.Y,
		VX:          d.Speed.X,
		VY:          d.Speed.Y,
		Direction:   string(d.Direction),
		MapSpeed:    d.MapSpeed,
		BagCapacity: d.BagCapacity,
		Score:       d.Score,
		FullTimeMs:  d.FullTimeMs,
		IdleTimeMs:  d.IdleTimeMs,
	}
}
