// Package players implements the token store: the registry mapping opaque
// bearer tokens to the (dog, session) pair they authenticate, plus the
// token-minting primitive.
package players

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// ErrUnknownToken is returned when a token does not match any Player.
var ErrUnknownToken = errors.New("players: unknown token")

// Player is one authenticated client: its dog and the session that dog
// lives in, addressed by id.
type Player struct {
	ID        int
	Token     string
	DogID     int
	SessionID int
}

// Registry is the process-wide Player table, keyed by token for O(1)
// lookup on every authenticated request.
type Registry struct {
	byToken map[string]*Player
	byID    map[int]*Player
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byToken: make(map[string]*Player),
		byID:    make(map[int]*Player),
	}
}

// Add mints a fresh token and registers a new Player for the given dog and
// session, both owned by id.
func Add(r *Registry, id, dogID, sessionID int) (*Player, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	p := &Player{ID: id, Token: token, DogID: dogID, SessionID: sessionID}
	r.byToken[token] = p
	r.byID[id] = p
	return p, nil
}

// Restore re-inserts a Player with an already-known id and token, used when
// rebuilding the registry from a snapshot.
func (r *Registry) Restore(p *Player) {
	r.byToken[p.Token] = p
	r.byID[p.ID] = p
}

// FindByToken looks up the Player owning token.
func (r *Registry) FindByToken(token string) (*Player, error) {
	p, ok := r.byToken[token]
	if !ok {
		return nil, ErrUnknownToken
	}
	return p, nil
}

// RemoveByDogID drops the Player whose dog has retired. A no-op if no such
// Player exists.
func (r *Registry) RemoveByDogID(dogID int) {
	for token, p := range r.byToken {
		if p.DogID == dogID {
			delete(r.byToken, token)
			delete(r.byID, p.ID)
			return
		}
	}
}

// All returns every registered Player, in no particular order. Used by
// snapshot serialization.
func (r *Registry) All() []*Player {
	out := make([]*Player, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out
}

// Count returns the number of registered players.
func (r *Registry) Count() int {
	return len(r.byID)
}

// newToken mints 128 bits from a CSPRNG, hex-encoded to 32 lowercase
// characters. §4.9 calls out that the system this server descends from
// concatenated two Mersenne-Twister draws; a cryptographic RNG replaces
// that here.
func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
