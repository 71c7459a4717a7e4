package chat

import "sync"

// Log is the append-only history of the channel. Entries are kept in arrival
// order for the process lifetime; there is no persistence.
type Log struct {
	messages []Message
	mu       sync.RWMutex
}

// NewLog creates an empty message log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a message at the end of the log.
func (l *Log) Append(message Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, message)
}

// Recent returns a copy of the last n messages in arrival order, oldest
// first. If fewer than n exist, all of them are returned.
func (l *Log) Recent(n int) []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := 0
	if len(l.messages) > n {
		start = len(l.messages) - n
	}

	recent := make([]Message, len(l.messages)-start)
	copy(recent, l.messages[start:])
	return recent
}

// Len returns the total number of messages appended so far.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
