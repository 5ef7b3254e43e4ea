// Package websocket broadcasts post-tick session summaries to connected
// spectators. It is not part of the client wire protocol in SPEC_FULL.md
// §6; a client that wants to play connects over the HTTP API only.
//
// A spectator subscribes by opening a WebSocket to /ws?mapId=<map id>, which
// the server resolves to that map's live session id. After
// each tick, Hub.BroadcastState sends every subscriber of that session a
// JSON envelope naming every dog's position, direction, score and bag
// size, plus the ground loot count. A client whose send buffer is full is
// dropped rather than blocking the broadcast.
package websocket
