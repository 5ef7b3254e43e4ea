// Package api wires the §6 wire protocol onto a GameAPI and a RecordsAPI.
//
// Routes:
//
//	GET,HEAD  /api/v1/maps                 list of {id, name}
//	GET,HEAD  /api/v1/maps/{id}             full map definition
//	POST      /api/v1/game/join             {userName, mapId} -> {authToken, playerId}
//	GET,HEAD  /api/v1/game/players          bearer -> {id: name}
//	GET,HEAD  /api/v1/game/state            bearer -> {players, lostObjects}
//	POST      /api/v1/game/player/action    bearer, {move} -> {}
//	POST      /api/v1/game/tick             {timeDelta} -> {}, only in test mode
//	GET       /api/v1/game/records          ?start=&maxItems= -> [{name,score,playTime}]
//
// Every error response is a JSON {code, message} envelope with one of the
// stable codes: invalidArgument, mapNotFound, invalidToken, unknownToken,
// invalidMethod, badRequest, internalError.
package api
