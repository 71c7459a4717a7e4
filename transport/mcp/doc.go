// Package mcp exposes the control room's REST surface as MCP tools.
//
// The mcp package implements a thin client that proxies every tool call to
// the REST API, so MCP-driven assistants observe exactly the same state as
// the control-room frontend.
//
// Tools:
//   - traffic_status: current snapshot of every approach
//   - set_density: set an approach's vehicle density
//   - set_max_speed: set an approach's speed limit
//   - assistant: heuristic summary and suggestions for a free-text prompt
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:3001")
//	server.ServeStdio(client.GetMCPServer())
package mcp
