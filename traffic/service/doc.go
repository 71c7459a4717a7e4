// Package service provides the business logic layer for the control room.
//
// The service package implements:
//   - Snapshot reads of the traffic engine
//   - Density and speed-limit mutations with explicit invalid-direction errors
//   - The heuristic assistant that summarizes current conditions
//
// Core Interfaces:
//
// TrafficService is the main service interface consumed by the REST facade,
// the WebSocket hub and the MCP transport.
//
// Architecture:
//
// The service layer sits between the transports (HTTP/WebSocket/MCP) and the
// traffic engine. Transports never touch the engine directly; the service
// owns error shaping (ErrInvalidDirection) so every transport reports
// failures the same way.
package service
