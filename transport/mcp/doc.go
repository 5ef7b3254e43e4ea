// Package mcp exposes the game's HTTP API as a set of Model Context
// Protocol tools for scripted and agent-driven play.
//
// Every tool issues at most one HTTP request to the real API and returns a
// short text summary of its JSON response; the package holds no game state
// of its own and runs no game logic locally.
//
// Tools:
//   - join: join a map, returns an auth token and player id
//   - move: set a joined dog's current direction
//   - state: fetch every dog's position, bag and score, plus ground loot
//   - tick: advance the simulation (test mode only)
//   - records: fetch the retired-player leaderboard
package mcp
