package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/crosslight/controlroom/chat"
	"github.com/crosslight/controlroom/traffic/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound buffer per connection; a peer that falls further behind is
	// dropped.
	sendBufferSize = 256

	// Number of recent messages disclosed to a newly connected client.
	historyWindow = 50

	// DefaultPushInterval is the traffic push period used when the scenario
	// does not configure one.
	DefaultPushInterval = time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// StatusProvider is the slice of the traffic service the hub consumes.
type StatusProvider interface {
	Snapshot(ctx context.Context) (engine.Snapshot, error)
}

// Client represents one operator connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// userID is the identity bound by a connect frame. It is only touched
	// from the hub goroutine.
	userID string
}

// inbound pairs a raw frame with the connection it arrived on.
type inbound struct {
	client *Client
	data   []byte
}

// Hub maintains the set of active connections, the presence registry and the
// message log, and fans events out to every connection.
type Hub struct {
	// Registered connections.
	clients map[*Client]bool

	// Register requests from new connections.
	register chan *Client

	// Unregister requests from dying connections.
	unregister chan *Client

	// Inbound frames from connections.
	frames chan inbound

	provider     StatusProvider
	registry     *chat.Registry
	log          *chat.Log
	pushInterval time.Duration
}

// NewHub creates a hub reading traffic state from provider and pushing it to
// every connection on the given interval.
func NewHub(provider StatusProvider, pushInterval time.Duration) *Hub {
	if pushInterval <= 0 {
		pushInterval = DefaultPushInterval
	}
	return &Hub{
		clients:      make(map[*Client]bool),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		frames:       make(chan inbound),
		provider:     provider,
		registry:     chat.NewRegistry(),
		log:          chat.NewLog(),
		pushInterval: pushInterval,
	}
}

// Run starts the hub's event loop. Every presence and log mutation happens
// here, so the message log keeps a single global arrival order.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case frame := <-h.frames:
			h.handleFrame(frame.client, frame.data)
		}
	}
}

// ServeWS handles WebSocket requests from clients.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// registerClient adds a connection and immediately pushes the current
// traffic conditions to it.
func (h *Hub) registerClient(client *Client) {
	h.clients[client] = true
	h.sendEvent(client, trafficUpdateEvent{Type: eventTrafficUpdate, Data: h.snapshot()})

	log.Printf("Client connected (total connections: %d)", len(h.clients))
}

// unregisterClient removes a connection; if it was bound to a user, presence
// is released and the remaining clients get a fresh user list. Unregistering
// an unknown connection is a no-op.
func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	close(client.send)

	if client.userID != "" {
		if user, ok := h.registry.Unbind(client.userID); ok {
			log.Printf("User %s disconnected (%d online)", user.Name, h.registry.Len())
			h.broadcastUserList()
		}
	}
}

// handleFrame dispatches one inbound frame. Malformed input and unrecognized
// types are dropped without feedback.
func (h *Hub) handleFrame(client *Client, data []byte) {
	if _, ok := h.clients[client]; !ok {
		// The connection was already unregistered (its send channel is
		// closed) but its readPump had queued this frame first. Replying
		// would write to the closed channel.
		return
	}

	var frame clientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return
	}

	switch frame.Type {
	case frameConnect:
		h.handleConnect(client, frame)
	case frameMessage:
		h.handleMessage(client, frame)
	case frameEmergency:
		h.handleEmergency(client, frame)
	default:
		// Unrecognized types are ignored.
	}
}

// handleConnect binds a fresh identity to the connection, replies with the
// recent history and announces the new user list to everyone.
func (h *Hub) handleConnect(client *Client, frame clientFrame) {
	if client.userID != "" {
		// One identity per connection; repeated connect frames are ignored.
		return
	}

	user := chat.NewUser(frame.UserName)
	h.registry.Bind(user)
	client.userID = user.ID

	h.sendEvent(client, connectedEvent{
		Type:     eventConnected,
		UserID:   user.ID,
		Messages: h.log.Recent(historyWindow),
	})
	h.broadcastUserList()

	log.Printf("User %s connected (%d online)", user.Name, h.registry.Len())
}

// handleMessage appends a chat message and broadcasts it. Frames referencing
// an unknown user are dropped.
func (h *Hub) handleMessage(client *Client, frame clientFrame) {
	user, ok := h.registry.Get(frame.UserID)
	if !ok {
		return
	}

	kind := chat.MessageNormal
	if frame.MessageType != "" {
		kind = chat.MessageType(frame.MessageType)
	}

	message := chat.NewMessage(user.ID, user.Name, frame.Content, kind)
	h.log.Append(message)

	h.broadcastEvent(newMessageEvent{Type: eventNewMessage, Message: message})
}

// handleEmergency appends the fixed alert message, refreshes the traffic
// snapshot and broadcasts both together.
func (h *Hub) handleEmergency(client *Client, frame clientFrame) {
	user, ok := h.registry.Get(frame.UserID)
	if !ok {
		return
	}

	message := chat.NewMessage(user.ID, user.Name, chat.EmergencyContent, chat.MessageEmergency)
	h.log.Append(message)

	h.broadcastEvent(emergencyEvent{
		Type:        eventEmergency,
		Message:     message,
		TrafficData: h.snapshot(),
	})
}

// broadcastUserList announces the current presence to every connection.
func (h *Hub) broadcastUserList() {
	h.broadcastEvent(userListEvent{Type: eventUserList, Users: h.registry.List()})
}

// broadcastEvent serializes an event once and delivers it to every open
// connection. Delivery is per-recipient best effort: a connection whose
// buffer is full is dropped, never allowed to block the rest.
func (h *Hub) broadcastEvent(event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal broadcast event: %v", err)
		return
	}

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.unregisterClient(client)
		}
	}
}

// sendEvent delivers an event to a single connection, dropping it if its
// buffer is full.
func (h *Hub) sendEvent(client *Client, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal event: %v", err)
		return
	}

	select {
	case client.send <- data:
	default:
		h.unregisterClient(client)
	}
}

// snapshot reads the current traffic state, tolerating provider failures.
func (h *Hub) snapshot() engine.Snapshot {
	snap, err := h.provider.Snapshot(context.Background())
	if err != nil {
		log.Printf("Failed to read traffic snapshot: %v", err)
		return engine.Snapshot{}
	}
	return snap
}

// readPump pumps frames from the WebSocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		c.hub.frames <- inbound{client: c, data: data}
	}
}

// writePump pumps events from the hub to the WebSocket connection. It also
// owns the periodic traffic push, so stopping the pump cancels the push on
// every exit path exactly once.
func (c *Client) writePump() {
	ping := time.NewTicker(pingPeriod)
	push := time.NewTicker(c.hub.pushInterval)
	defer func() {
		ping.Stop()
		push.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-push.C:
			snap, err := c.hub.provider.Snapshot(context.Background())
			if err != nil {
				continue
			}
			data, err := json.Marshal(trafficUpdateEvent{Type: eventTrafficUpdate, Data: snap})
			if err != nil {
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
