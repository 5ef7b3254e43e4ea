// Command loadtest drives a running game server through a scripted
// join/move/tick sequence and reports the final scores. It is a thin
// net/http client against the §6 HTTP API — no game logic runs locally.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "base URL of the running game server")
	mapID := flag.String("map-id", "", "id of the map to join (required)")
	players := flag.Int("players", 4, "number of dogs to join")
	rounds := flag.Int("rounds", 20, "number of tick rounds to run")
	tickMs := flag.Int64("tick-ms", 200, "milliseconds advanced per tick")
	flag.Parse()

	if *mapID == "" {
		fmt.Fprintln(os.Stderr, "loadtest: -map-id is required")
		os.Exit(1)
	}

	client := &apiClient{baseURL: *baseURL, http: &http.Client{Timeout: 5 * time.Second}}

	report, err := run(client, *mapID, *players, *rounds, *tickMs)
	if err != nil {
		log.Fatalf("loadtest: %v", err)
	}
	fmt.Print(report)
}

var directions = []string{"U", "D", "L", "R"}

// run joins n players onto mapID, sends each a fixed direction, advances
// the simulation rounds times, and returns a report of the final scores and
// the remaining ground loot.
func run(c *apiClient, mapID string, n, rounds int, tickMs int64) (string, error) {
	type joined struct {
		name  string
		token string
	}

	dogs := make([]joined, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("loadtest-%d", i)
		token, _, err := c.join(name, mapID)
		if err != nil {
			return "", fmt.Errorf("join %s: %w", name, err)
		}
		dogs = append(dogs, joined{name: name, token: token})

		if err := c.move(token, directions[i%len(directions)]); err != nil {
			return "", fmt.Errorf("move %s: %w", name, err)
		}
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "joined %d dogs on map %q\n", n, mapID)

	for round := 1; round <= rounds; round++ {
		if err := c.tick(tickMs); err != nil {
			return "", fmt.Errorf("tick %d: %w", round, err)
		}
	}

	state, err := c.state(dogs[0].token)
	if err != nil {
		return "", fmt.Errorf("final state: %w", err)
	}

	fmt.Fprintf(&b, "ran %d rounds of %dms\n\nfinal scores:\n", rounds, tickMs)
	for _, d := range dogs {
		fmt.Fprintf(&b, "  %s: score=%d\n", d.name, scoreFor(state, d.name))
	}
	fmt.Fprintf(&b, "\nground loot remaining: %d\n", len(state.LostObjects))

	return b.String(), nil
}

func scoreFor(state *stateResponse, name string) int {
	for _, p := range state.Players {
		if p.Name == name {
			return p.Score
		}
	}
	return -1
}

type apiClient struct {
	baseURL string
	http    *http.Client
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *apiClient) do(method, path, token string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func (c *apiClient) join(userName, mapID string) (token string, playerID int, err error) {
	var resp struct {
		AuthToken string `json:"authToken"`
		PlayerID  int    `json:"playerId"`
	}
	if err := c.do(http.MethodPost, "/api/v1/game/join", "", map[string]string{
		"userName": userName, "mapId": mapID,
	}, &resp); err != nil {
		return "", 0, err
	}
	return resp.AuthToken, resp.PlayerID, nil
}

func (c *apiClient) move(token, direction string) error {
	return c.do(http.MethodPost, "/api/v1/game/player/action", token, map[string]string{"move": direction}, nil)
}

func (c *apiClient) tick(deltaMs int64) error {
	return c.do(http.MethodPost, "/api/v1/game/tick", "", map[string]int64{"timeDelta": deltaMs}, nil)
}

type playerStateResponse struct {
	Name  string
	Score int
}

type stateResponse struct {
	Players     []playerStateResponse
	LostObjects []struct{}
}

func (c *apiClient) state(token string) (*stateResponse, error) {
	var raw struct {
		Players map[string]struct {
			Score int `json:"score"`
		} `json:"players"`
		LostObjects map[string]struct{} `json:"lostObjects"`
	}
	if err := c.do(http.MethodGet, "/api/v1/game/state", token, nil, &raw); err != nil {
		return nil, err
	}

	names, err := c.players(token)
	if err != nil {
		return nil, err
	}

	out := &stateResponse{}
	for id, p := range raw.Players {
		out.Players = append(out.Players, playerStateResponse{Name: names[id], Score: p.Score})
	}
	for range raw.LostObjects {
		out.LostObjects = append(out.LostObjects, struct{}{})
	}
	return out, nil
}

func (c *apiClient) players(token string) (map[string]string, error) {
	var names map[string]string
	if err := c.do(http.MethodGet, "/api/v1/game/players", token, nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}
