package websocket

import (
	"github.com/crosslight/controlroom/chat"
	"github.com/crosslight/controlroom/traffic/engine"
)

// Frame type discriminators.
const (
	frameConnect   = "connect"
	frameMessage   = "message"
	frameEmergency = "emergency"

	eventTrafficUpdate = "trafficUpdate"
	eventConnected     = "connected"
	eventUserList      = "userList"
	eventNewMessage    = "newMessage"
	eventEmergency     = "emergency"
)

// clientFrame is the envelope for every inbound frame. Type selects which of
// the remaining fields are meaningful.
type clientFrame struct {
	Type        string `json:"type"`
	UserName    string `json:"userName,omitempty"`
	UserID      string `json:"userId,omitempty"`
	Content     string `json:"content,omitempty"`
	MessageType string `json:"messageType,omitempty"`
}

// Outbound event envelopes. Field names match what the control-room frontend
// expects.

type trafficUpdateEvent struct {
	Type string          `json:"type"`
	Data engine.Snapshot `json:"data"`
}

type connectedEvent struct {
	Type     string         `json:"type"`
	UserID   string         `json:"userId"`
	Messages []chat.Message `json:"messages"`
}

type userListEvent struct {
	Type  string      `json:"type"`
	Users []chat.User `json:"users"`
}

type newMessageEvent struct {
	Type    string       `json:"type"`
	Message chat.Message `json:"message"`
}

type emergencyEvent struct {
	Type        string          `json:"type"`
	Message     chat.Message    `json:"message"`
	TrafficData engine.Snapshot `json:"trafficData"`
}
