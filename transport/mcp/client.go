package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Client is a thin MCP client that proxies every tool call to the game's
// HTTP API. It holds no game state of its own.
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates an MCP client that calls the HTTP API rooted at
// baseURL (e.g. "http://localhost:8080").
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"loot-road-game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Loot Road Game - scripted agent interface

This is a thin client that proxies every tool call to the real HTTP API.
No tool runs any game logic locally.

AVAILABLE TOOLS:
- join: join a map with a player name, returns an auth token to reuse in later calls
- move: set a dog's current direction (U/D/L/R, or empty to stop)
- state: fetch the current positions, bags and scores of every dog plus ground loot
- tick: advance the simulation by a number of milliseconds (test mode only)
- records: fetch the retired-player leaderboard

A token returned by join must be passed to move/state for that player. It is not
remembered across tool calls unless you pass it back in.`),
	)

	c.registerTools()
}

// GetMCPServer returns the underlying MCP server for serving.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join",
		Description: "Join a map as a new dog, returning an auth token and player id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"userName": map[string]interface{}{
					"type":        "string",
					"description": "Display name for the new dog",
				},
				"mapId": map[string]interface{}{
					"type":        "string",
					"description": "ID of the map to join",
				},
			},
			Required: []string{"userName", "mapId"},
		},
	}, c.handleJoin)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Set the current movement direction for a joined dog",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Auth token returned by join",
				},
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"U", "D", "L", "R", ""},
					"description": "U, D, L, R, or empty string to stop",
				},
			},
			Required: []string{"token", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "state",
		Description: "Fetch every dog's position, bag and score, and all ground loot",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Auth token returned by join",
				},
			},
			Required: []string{"token"},
		},
	}, c.handleState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tick",
		Description: "Advance the simulation by timeDeltaMs milliseconds. Server must be running in test mode",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"timeDeltaMs": map[string]interface{}{
					"type":        "integer",
					"description": "Milliseconds to advance, must be positive",
				},
			},
			Required: []string{"timeDeltaMs"},
		},
	}, c.handleTick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "records",
		Description: "Fetch the retired-player leaderboard",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"start": map[string]interface{}{
					"type":        "integer",
					"description": "Offset into the leaderboard, default 0",
				},
				"maxItems": map[string]interface{}{
					"type":        "integer",
					"description": "Max records to return, default and cap 100",
				},
			},
		},
	}, c.handleRecords)
}

// apiCall issues one HTTP request to the game API and decodes its JSON
// response. It does not retry and carries no session state.
func (c *Client) apiCall(method, path, token string, body, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message != "" {
			return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func argString(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func argInt(args map[string]interface{}, key string) (int, bool) {
	v, ok := args[key].(float64)
	if !ok {
		return 0, false
	}
	return int(v), true
}

func (c *Client) handleJoin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	userName := argString(args, "userName")
	mapID := argString(args, "mapId")

	body := map[string]string{"userName": userName, "mapId": mapID}

	var resp struct {
		AuthToken string `json:"authToken"`
		PlayerID  int    `json:"playerId"`
	}
	if err := c.apiCall(http.MethodPost, "/api/v1/game/join", "", body, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Joined map %q as %q\nauthToken: %s\nplayerId: %d\n",
		mapID, userName, resp.AuthToken, resp.PlayerID)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	token := argString(args, "token")
	direction := argString(args, "direction")

	body := map[string]string{"move": direction}
	if err := c.apiCall(http.MethodPost, "/api/v1/game/player/action", token, body, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("direction set to %q", direction)), nil
}

type pointRef struct{ X, Y float64 }

type bagItemRef struct{ ID, Type int }

type playerStateRef struct {
	Pos   pointRef     `json:"pos"`
	Dir   string       `json:"dir"`
	Score int          `json:"score"`
	Bag   []bagItemRef `json:"bag"`
}

type lostObjectRef struct {
	Type int      `json:"type"`
	Pos  pointRef `json:"pos"`
}

type stateRef struct {
	Players     map[string]playerStateRef `json:"players"`
	LostObjects map[string]lostObjectRef  `json:"lostObjects"`
}

func (c *Client) handleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	token := argString(args, "token")

	var state stateRef
	if err := c.apiCall(http.MethodGet, "/api/v1/game/state", token, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatState(&state)), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	deltaMs, ok := argInt(args, "timeDeltaMs")
	if !ok || deltaMs <= 0 {
		return mcp.NewToolResultError("timeDeltaMs must be a positive integer"), nil
	}

	body := map[string]int64{"timeDelta": int64(deltaMs)}
	if err := c.apiCall(http.MethodPost, "/api/v1/game/tick", "", body, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("advanced %dms", deltaMs)), nil
}

func (c *Client) handleRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	path := "/api/v1/game/records"
	query := make([]string, 0, 2)
	if start, ok := argInt(args, "start"); ok {
		query = append(query, "start="+strconv.Itoa(start))
	}
	if maxItems, ok := argInt(args, "maxItems"); ok {
		query = append(query, "maxItems="+strconv.Itoa(maxItems))
	}
	if len(query) > 0 {
		path += "?" + strings.Join(query, "&")
	}

	var records []struct {
		Name     string `json:"name"`
		Score    int    `json:"score"`
		PlayTime int64  `json:"playTime"`
	}
	if err := c.apiCall(http.MethodGet, path, "", nil, &records); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Leaderboard (%d records):\n\n", len(records))
	for i, rec := range records {
		fmt.Fprintf(&b, "%d. %s — score %d, playTime %ds\n", i+1, rec.Name, rec.Score, rec.PlayTime)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func formatState(state *stateRef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Players (%d):\n", len(state.Players))
	for id, p := range state.Players {
		fmt.Fprintf(&b, "- #%s pos=(%.1f,%.1f) dir=%q score=%d bagSize=%d\n",
			id, p.Pos.X, p.Pos.Y, p.Dir, p.Score, len(p.Bag))
	}
	fmt.Fprintf(&b, "\nGround loot (%d):\n", len(state.LostObjects))
	for id, l := range state.LostObjects {
		fmt.Fprintf(&b, "- #%s type=%d pos=(%.1f,%.1f)\n", id, l.Type, l.Pos.X, l.Pos.Y)
	}
	return b.String()
}
