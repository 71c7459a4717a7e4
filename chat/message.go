package chat

import (
	"time"

	"github.com/google/uuid"
)

// MessageType distinguishes ordinary chat traffic from emergency overrides.
type MessageType string

const (
	MessageNormal    MessageType = "normal"
	MessageEmergency MessageType = "emergency"
)

// EmergencyContent is the fixed body broadcast for every emergency override.
const EmergencyContent = "🚨 EMERGENCY ALERT: Traffic stopped for emergency vehicle"

// Message is a single entry in the control-room channel. Messages are
// immutable once appended to the log.
type Message struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	UserName  string      `json:"userName"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Type      MessageType `json:"type"`
}

// NewMessage builds a message authored by the given user. The author name is
// captured here and never re-resolved later.
func NewMessage(userID, userName, content string, kind MessageType) Message {
	return Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		UserName:  userName,
		Content:   content,
		Timestamp: time.Now(),
		Type:      kind,
	}
}

// User identifies one connected operator.
type User struct {
	ID   string `json:"userId"`
	Name string `json:"userName"`
}

// NewUser mints a user with a fresh identifier and the client-supplied
// display name.
func NewUser(name string) User {
	return User{
		ID:   uuid.NewString(),
		Name: name,
	}
}
