// Package api provides the HTTP surface of the control room.
//
// The api package implements:
//   - RESTful endpoints for reading and mutating traffic state
//   - The heuristic assistant endpoint
//   - WebSocket upgrade handling into the hub
//   - Static file serving for the control-room frontend
//
// Endpoints:
//
// Traffic state:
//   - GET  /api/traffic - current snapshot of every approach
//   - POST /api/traffic/{direction}/maxSpeed - set an approach's speed limit
//   - POST /api/density/{direction} - set an approach's density
//
// Assistant:
//   - POST /api/assistant - free-text prompt, heuristic summary + suggestions
//
// Misc:
//   - GET /api/health - liveness probe
//   - GET /ws - WebSocket upgrade into the realtime channel
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Mutations respond with
// {success: true, ...}; an unrecognized direction yields HTTP 400 with
// {success: false, message: "Invalid direction"} and leaves the snapshot
// untouched. Other failures are returned as {error: "..."} with an
// appropriate status code.
package api
