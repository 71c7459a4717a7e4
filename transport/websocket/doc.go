// Package websocket provides the realtime channel of the control room.
//
// The websocket package implements:
//   - The connection hub terminating one duplex channel per operator
//   - The connect/message/emergency frame protocol
//   - Presence tracking and chat history for late joiners
//   - A per-connection periodic push of the traffic snapshot
//
// Architecture:
//
// The package uses a hub-and-spoke model. All presence and message-log
// mutations happen on the hub's event loop goroutine, which gives the log a
// single global arrival order and keeps user lists consistent during
// broadcasts. Each connection additionally runs a read pump and a write
// pump; the write pump owns the periodic traffic push so the push is
// cancelled exactly when the connection dies.
//
// Message Protocol:
//
// Inbound frames are JSON with a type discriminator:
//   - {type: "connect", userName}
//   - {type: "message", userId, content, messageType?}
//   - {type: "emergency", userId}
//
// Malformed frames, unknown types and unknown user ids are dropped silently.
//
// Outbound events:
//   - {type: "trafficUpdate", data}             on open and on every push tick
//   - {type: "connected", userId, messages}     reply to connect, sender only
//   - {type: "userList", users}                 broadcast on presence change
//   - {type: "newMessage", message}             broadcast on chat
//   - {type: "emergency", message, trafficData} broadcast on override
//
// Delivery is best effort: a slow or dead connection is dropped rather than
// allowed to stall delivery to the others.
package websocket
