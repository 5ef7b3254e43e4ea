// Package api implements the HTTP/JSON wire protocol: map listing, join,
// per-player state and actions, the test-mode tick endpoint, and the
// retired-record leaderboard.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wricardo/loot-road-game/internal/game"
	"github.com/wricardo/loot-road-game/internal/model"
	"github.com/wricardo/loot-road-game/internal/players"
	"github.com/wricardo/loot-road-game/internal/store"
	"github.com/wricardo/loot-road-game/transport/websocket"
)

// GameAPI is the subset of *game.Game the HTTP layer depends on.
type GameAPI interface {
	ListMaps() []game.MapSummary
	GetMap(id string) (*model.Map, error)
	Join(userName, mapID string) (*players.Player, error)
	SetDirection(token, cmd string) error
	Tick(ctx context.Context, dtMs int64) error
	ViewState(token string) ([]*model.Dog, []model.Loot, error)
	PlayerNames(token string) (map[int]string, error)
	Authenticate(token string) (*players.Player, error)
}

// RecordsAPI is the subset of *store.Store the leaderboard endpoint needs.
type RecordsAPI interface {
	Leaderboard(ctx context.Context, offset, limit int) ([]store.Record, error)
}

const maxRecordItems = 100

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// apiError is the stable {code, message} envelope every error response
// carries.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server implements the §6 route table over a GameAPI and a RecordsAPI. hub
// may be nil. No handler uses it: post-tick state reaches the hub through
// game.Config.TickObserver, not through the tick endpoint.
type Server struct {
	game    GameAPI
	records RecordsAPI
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer builds the router and registers every route.
func NewServer(g GameAPI, records RecordsAPI, hub *websocket.Hub) *Server {
	s := &Server{game: g, records: records, hub: hub, router: mux.NewRouter()}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/maps", s.handleListMaps).Methods(http.MethodGet, http.MethodHead)
	v1.HandleFunc("/maps/{id}", s.handleGetMap).Methods(http.MethodGet, http.MethodHead)
	v1.HandleFunc("/game/join", s.handleJoin).Methods(http.MethodPost)
	v1.HandleFunc("/game/players", s.withAuth(s.handlePlayers)).Methods(http.MethodGet, http.MethodHead)
	v1.HandleFunc("/game/state", s.withAuth(s.handleState)).Methods(http.MethodGet, http.MethodHead)
	v1.HandleFunc("/game/player/action", s.withAuth(s.handleAction)).Methods(http.MethodPost)
	v1.HandleFunc("/game/tick", s.handleTick).Methods(http.MethodPost)
	v1.HandleFunc("/game/records", s.handleRecords).Methods(http.MethodGet)

	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "invalidMethod", "method not allowed")
	})
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiError{Code: code, Message: message})
}

// withAuth extracts and validates the bearer token, then resolves it
// against the game's player registry before calling next.
func (s *Server) withAuth(next func(w http.ResponseWriter, r *http.Request, token string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "invalidToken", "missing or malformed Authorization header")
			return
		}
		if _, err := s.game.Authenticate(token); err != nil {
			respondError(w, http.StatusUnauthorized, "unknownToken", "token does not match any player")
			return
		}
		next(w, r, token)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	token := strings.TrimPrefix(h, prefix)
	if !tokenPattern.MatchString(token) {
		return "", false
	}
	return token, true
}

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	maps := s.game.ListMaps()
	out := make([]mapSummaryDTO, 0, len(maps))
	for _, m := range maps {
		out = append(out, mapSummaryDTO{ID: m.ID, Name: m.Name})
	}
	respondJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	m, err := s.game.GetMap(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "mapNotFound", fmt.Sprintf("map %q not found", id))
		return
	}
	respondJSON(w, r, http.StatusOK, mapDetailDTO(m))
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserName string `json:"userName"`
		MapID    string `json:"mapId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalidArgument", "malformed JSON body")
		return
	}
	if strings.TrimSpace(req.UserName) == "" {
		respondError(w, http.StatusBadRequest, "invalidArgument", "userName must not be empty")
		return
	}

	p, err := s.game.Join(req.UserName, req.MapID)
	if err != nil {
		if errors.Is(err, game.ErrMapNotFound) {
			respondError(w, http.StatusNotFound, "mapNotFound", fmt.Sprintf("map %q not found", req.MapID))
			return
		}
		respondError(w, http.StatusInternalServerError, "internalError", err.Error())
		return
	}

	respondJSON(w, r, http.StatusOK, joinResponseDTO{AuthToken: p.Token, PlayerID: p.DogID})
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request, token string) {
	names, err := s.game.PlayerNames(token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unknownToken", "token does not match any player")
		return
	}
	out := make(map[string]string, len(names))
	for id, name := range names {
		out[strconv.Itoa(id)] = name
	}
	respondJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request, token string) {
	dogs, loot, err := s.game.ViewState(token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unknownToken", "token does not match any player")
		return
	}
	respondJSON(w, r, http.StatusOK, stateDTO(dogs, loot))
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, token string) {
	var req struct {
		Move string `json:"move"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalidArgument", "malformed JSON body")
		return
	}
	switch req.Move {
	case "L", "R", "U", "D", "":
	default:
		respondError(w, http.StatusBadRequest, "invalidArgument", fmt.Sprintf("invalid move %q", req.Move))
		return
	}

	if err := s.game.SetDirection(token, req.Move); err != nil {
		respondError(w, http.StatusUnauthorized, "unknownToken", "token does not match any player")
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]interface{}{})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TimeDelta int64 `json:"timeDelta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalidArgument", "malformed JSON body")
		return
	}
	if req.TimeDelta <= 0 {
		respondError(w, http.StatusBadRequest, "invalidArgument", "timeDelta must be positive")
		return
	}

	if err := s.game.Tick(r.Context(), req.TimeDelta); err != nil {
		if errors.Is(err, game.ErrNotInTestMode) {
			respondError(w, http.StatusBadRequest, "invalidArgument", "server is not running in test mode")
			return
		}
		respondError(w, http.StatusInternalServerError, "internalError", err.Error())
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]interface{}{})
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	start := 0
	if v := query.Get("start"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "badRequest", "start must be a non-negative integer")
			return
		}
		start = n
	}

	maxItems := maxRecordItems
	if v := query.Get("maxItems"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "badRequest", "maxItems must be a non-negative integer")
			return
		}
		if n > maxRecordItems {
			respondError(w, http.StatusBadRequest, "badRequest", fmt.Sprintf("maxItems must be <= %d", maxRecordItems))
			return
		}
		maxItems = n
	}

	records, err := s.records.Leaderboard(r.Context(), start, maxItems)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internalError", err.Error())
		return
	}

	out := make([]recordDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, recordDTO{Name: rec.Name, Score: rec.Score, PlayTime: rec.PlayTimeMs / 1000})
	}
	respondJSON(w, r, http.StatusOK, out)
}
