package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/crosslight/controlroom/chat"
	"github.com/crosslight/controlroom/traffic/engine"
)

// stubProvider is a canned StatusProvider for hub tests.
type stubProvider struct {
	snap engine.Snapshot
	err  error
}

func (s *stubProvider) Snapshot(ctx context.Context) (engine.Snapshot, error) {
	return s.snap, s.err
}

func testSnapshot() engine.Snapshot {
	return engine.Snapshot{
		engine.North: {
			Density:        22,
			MaxSpeed:       60,
			PredictedSpeed: 49,
			Volumes:        engine.VehicleVolumes{Total: 34, First: 20, Second: 14},
			FirstGroup:     engine.GroupStatus{EstimatedTimeToReach: 88},
			SecondGroup:    engine.GroupStatus{EstimatedTimeToReach: 205},
		},
	}
}

func newTestHub() *Hub {
	return NewHub(&stubProvider{snap: testSnapshot()}, time.Hour)
}

func newTestClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		send: make(chan []byte, sendBufferSize),
	}
}

// testEvent is a union of every outbound event shape.
type testEvent struct {
	Type        string          `json:"type"`
	Data        json.RawMessage `json:"data"`
	UserID      string          `json:"userId"`
	Messages    []chat.Message  `json:"messages"`
	Users       []chat.User     `json:"users"`
	Message     *chat.Message   `json:"message"`
	TrafficData json.RawMessage `json:"trafficData"`
}

func readEvent(t *testing.T, client *Client) testEvent {
	t.Helper()

	select {
	case data := <-client.send:
		var event testEvent
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("Failed to unmarshal event: %v", err)
		}
		return event
	case <-time.After(100 * time.Millisecond):
		t.Fatal("No event received within timeout")
		return testEvent{}
	}
}

func expectNoEvent(t *testing.T, client *Client) {
	t.Helper()

	select {
	case data := <-client.send:
		t.Fatalf("Expected no event, got %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNewHub(t *testing.T) {
	hub := newTestHub()

	if hub.clients == nil {
		t.Error("Hub clients map is nil")
	}
	if hub.register == nil {
		t.Error("Hub register channel is nil")
	}
	if hub.unregister == nil {
		t.Error("Hub unregister channel is nil")
	}
	if hub.frames == nil {
		t.Error("Hub frames channel is nil")
	}
	if hub.registry == nil || hub.log == nil {
		t.Error("Hub registry and log should be initialized")
	}
}

func TestNewHubDefaultPushInterval(t *testing.T) {
	hub := NewHub(&stubProvider{}, 0)
	if hub.pushInterval != DefaultPushInterval {
		t.Errorf("Expected default push interval, got %v", hub.pushInterval)
	}
}

func TestRegisterPushesInitialTraffic(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)

	hub.registerClient(client)

	if !hub.clients[client] {
		t.Fatal("Client was not registered")
	}

	event := readEvent(t, client)
	if event.Type != eventTrafficUpdate {
		t.Fatalf("Expected trafficUpdate on open, got %s", event.Type)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal(event.Data, &snap); err != nil {
		t.Fatalf("Failed to unmarshal snapshot: %v", err)
	}
	if snap[engine.North].Density != 22 {
		t.Error("Snapshot data not transmitted correctly")
	}
}

func TestConnectFlow(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)
	hub.registerClient(client)
	readEvent(t, client) // initial trafficUpdate

	hub.handleFrame(client, []byte(`{"type":"connect","userName":"Alice"}`))

	connected := readEvent(t, client)
	if connected.Type != eventConnected {
		t.Fatalf("Expected connected reply, got %s", connected.Type)
	}
	if connected.UserID == "" {
		t.Error("Connected reply should carry the minted user ID")
	}
	if len(connected.Messages) != 0 {
		t.Errorf("Expected empty history for first user, got %d messages", len(connected.Messages))
	}
	if connected.Messages == nil {
		t.Error("History should serialize as an empty array, not null")
	}

	userList := readEvent(t, client)
	if userList.Type != eventUserList {
		t.Fatalf("Expected userList broadcast, got %s", userList.Type)
	}
	if len(userList.Users) != 1 || userList.Users[0].Name != "Alice" {
		t.Errorf("Expected user list with Alice only, got %v", userList.Users)
	}

	if client.userID != connected.UserID {
		t.Error("Connection should be bound to the minted identity")
	}
}

func TestRepeatedConnectIgnored(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)
	hub.registerClient(client)
	readEvent(t, client) // trafficUpdate

	hub.handleFrame(client, []byte(`{"type":"connect","userName":"Alice"}`))
	readEvent(t, client) // connected
	readEvent(t, client) // userList
	first := client.userID

	hub.handleFrame(client, []byte(`{"type":"connect","userName":"Alice again"}`))

	expectNoEvent(t, client)
	if client.userID != first {
		t.Error("Repeated connect must not rebind the connection")
	}
	if hub.registry.Len() != 1 {
		t.Errorf("Repeated connect must not mint a second identity, registry has %d", hub.registry.Len())
	}
}

func TestMessageBroadcast(t *testing.T) {
	hub := newTestHub()

	alice := newTestClient(hub)
	bob := newTestClient(hub)
	hub.registerClient(alice)
	hub.registerClient(bob)
	readEvent(t, alice)
	readEvent(t, bob)

	hub.handleFrame(alice, []byte(`{"type":"connect","userName":"Alice"}`))
	connected := readEvent(t, alice)
	readEvent(t, alice) // userList
	readEvent(t, bob)   // userList

	frame := fmt.Sprintf(`{"type":"message","userId":%q,"content":"hi"}`, connected.UserID)
	hub.handleFrame(alice, []byte(frame))

	for _, client := range []*Client{alice, bob} {
		event := readEvent(t, client)
		if event.Type != eventNewMessage {
			t.Fatalf("Expected newMessage, got %s", event.Type)
		}
		if event.Message.UserName != "Alice" {
			t.Errorf("Expected author Alice, got %s", event.Message.UserName)
		}
		if event.Message.Content != "hi" {
			t.Errorf("Expected content hi, got %s", event.Message.Content)
		}
		if event.Message.Type != chat.MessageNormal {
			t.Errorf("Expected normal message, got %s", event.Message.Type)
		}
	}

	if hub.log.Len() != 1 {
		t.Errorf("Expected 1 log entry, got %d", hub.log.Len())
	}
}

func TestMessageUnknownUserDropped(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)
	hub.registerClient(client)
	readEvent(t, client)

	hub.handleFrame(client, []byte(`{"type":"message","userId":"ghost","content":"boo"}`))

	expectNoEvent(t, client)
	if hub.log.Len() != 0 {
		t.Error("Message from an unbound user must not be appended")
	}
}

func TestMalformedFrameIgnored(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)
	hub.registerClient(client)
	readEvent(t, client)

	hub.handleFrame(client, []byte(`{not json`))
	hub.handleFrame(client, []byte(``))

	expectNoEvent(t, client)
	if !hub.clients[client] {
		t.Error("Malformed frames must not close the connection")
	}
}

func TestUnknownTypeIgnored(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)
	hub.registerClient(client)
	readEvent(t, client)

	hub.handleFrame(client, []byte(`{"type":"teleport","userId":"u1"}`))

	expectNoEvent(t, client)
}

func TestEmergencyBroadcast(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)
	hub.registerClient(client)
	readEvent(t, client)

	hub.handleFrame(client, []byte(`{"type":"connect","userName":"Alice"}`))
	connected := readEvent(t, client)
	readEvent(t, client) // userList

	frame := fmt.Sprintf(`{"type":"emergency","userId":%q}`, connected.UserID)
	hub.handleFrame(client, []byte(frame))

	event := readEvent(t, client)
	if event.Type != eventEmergency {
		t.Fatalf("Expected emergency broadcast, got %s", event.Type)
	}
	if event.Message.Content != chat.EmergencyContent {
		t.Errorf("Expected fixed alert content, got %q", event.Message.Content)
	}
	if event.Message.Type != chat.MessageEmergency {
		t.Errorf("Expected emergency type, got %s", event.Message.Type)
	}
	if len(event.TrafficData) == 0 {
		t.Error("Emergency broadcast should carry a refreshed snapshot")
	}

	entries := hub.log.Recent(historyWindow)
	if len(entries) != 1 || entries[0].Type != chat.MessageEmergency {
		t.Error("Emergency message should be appended to the log")
	}
}

func TestEmergencyUnknownUserDropped(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)
	hub.registerClient(client)
	readEvent(t, client)

	hub.handleFrame(client, []byte(`{"type":"emergency","userId":"ghost"}`))

	expectNoEvent(t, client)
	if hub.log.Len() != 0 {
		t.Error("Emergency from an unbound user must not be appended")
	}
}

func TestUnregisterReleasesPresence(t *testing.T) {
	hub := newTestHub()

	alice := newTestClient(hub)
	bob := newTestClient(hub)
	hub.registerClient(alice)
	hub.registerClient(bob)
	readEvent(t, alice)
	readEvent(t, bob)

	hub.handleFrame(alice, []byte(`{"type":"connect","userName":"Alice"}`))
	readEvent(t, alice)
	readEvent(t, alice)
	readEvent(t, bob)

	hub.handleFrame(bob, []byte(`{"type":"connect","userName":"Bob"}`))
	readEvent(t, bob)
	readEvent(t, bob)
	readEvent(t, alice)

	hub.unregisterClient(bob)

	if hub.registry.Len() != 1 {
		t.Errorf("Expected 1 user after close, got %d", hub.registry.Len())
	}

	userList := readEvent(t, alice)
	if userList.Type != eventUserList {
		t.Fatalf("Expected userList after close, got %s", userList.Type)
	}
	if len(userList.Users) != 1 || userList.Users[0].Name != "Alice" {
		t.Errorf("Expected Alice only, got %v", userList.Users)
	}

	// Closing again is a no-op.
	hub.unregisterClient(bob)
}

func TestUnregisterUnboundConnection(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)
	hub.registerClient(client)
	readEvent(t, client)

	// Never sent a connect frame; teardown must not touch presence.
	hub.unregisterClient(client)

	if len(hub.clients) != 0 {
		t.Error("Client should be removed")
	}
	if hub.registry.Len() != 0 {
		t.Error("Registry should stay empty")
	}
}

func TestHistoryWindow(t *testing.T) {
	hub := newTestHub()

	for i := 0; i < historyWindow+10; i++ {
		hub.log.Append(chat.NewMessage("u1", "Alice", fmt.Sprintf("msg-%d", i), chat.MessageNormal))
	}

	client := newTestClient(hub)
	hub.registerClient(client)
	readEvent(t, client)

	hub.handleFrame(client, []byte(`{"type":"connect","userName":"Bob"}`))
	connected := readEvent(t, client)

	if len(connected.Messages) != historyWindow {
		t.Fatalf("Expected %d messages, got %d", historyWindow, len(connected.Messages))
	}
	if connected.Messages[0].Content != "msg-10" {
		t.Errorf("Expected window to start at msg-10, got %s", connected.Messages[0].Content)
	}
	if connected.Messages[historyWindow-1].Content != fmt.Sprintf("msg-%d", historyWindow+9) {
		t.Errorf("Window should end at the newest message, got %s", connected.Messages[historyWindow-1].Content)
	}
}

func TestBroadcastDropsStalledConnection(t *testing.T) {
	hub := newTestHub()

	healthy := newTestClient(hub)
	stalled := &Client{hub: hub, send: make(chan []byte)} // no buffer, no reader
	hub.clients[healthy] = true
	hub.clients[stalled] = true

	hub.broadcastEvent(userListEvent{Type: eventUserList, Users: []chat.User{}})

	if _, ok := hub.clients[stalled]; ok {
		t.Error("Stalled connection should be dropped during broadcast")
	}
	if _, ok := hub.clients[healthy]; !ok {
		t.Error("Healthy connection must not be affected by another's failure")
	}

	readEvent(t, healthy)
}

func TestFrameAfterBroadcastDropIgnored(t *testing.T) {
	hub := newTestHub()

	stalled := &Client{hub: hub, send: make(chan []byte)} // no buffer, no reader
	hub.clients[stalled] = true

	// The broadcast drops the stalled connection and closes its send
	// channel, but its readPump may have queued a frame already.
	hub.broadcastEvent(userListEvent{Type: eventUserList, Users: []chat.User{}})
	if _, ok := hub.clients[stalled]; ok {
		t.Fatal("Stalled connection should be dropped during broadcast")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Frame from a dropped connection must not panic the hub: %v", r)
		}
	}()

	hub.handleFrame(stalled, []byte(`{"type":"connect","userName":"Ghost"}`))

	if hub.registry.Len() != 0 {
		t.Error("A dropped connection must not mint an identity")
	}
}

func TestMessageOrderAcrossClients(t *testing.T) {
	hub := newTestHub()

	alice := newTestClient(hub)
	bob := newTestClient(hub)
	hub.registerClient(alice)
	hub.registerClient(bob)
	readEvent(t, alice)
	readEvent(t, bob)

	hub.handleFrame(alice, []byte(`{"type":"connect","userName":"Alice"}`))
	aliceID := readEvent(t, alice).UserID
	readEvent(t, alice)
	readEvent(t, bob)

	hub.handleFrame(bob, []byte(`{"type":"connect","userName":"Bob"}`))
	bobID := readEvent(t, bob).UserID
	readEvent(t, bob)
	readEvent(t, alice)

	// Interleave senders; the log must keep arrival order.
	for i := 0; i < 6; i++ {
		sender, id := alice, aliceID
		if i%2 == 1 {
			sender, id = bob, bobID
		}
		frame := fmt.Sprintf(`{"type":"message","userId":%q,"content":"msg-%d"}`, id, i)
		hub.handleFrame(sender, []byte(frame))
	}

	entries := hub.log.Recent(historyWindow)
	if len(entries) != 6 {
		t.Fatalf("Expected 6 log entries, got %d", len(entries))
	}
	for i, entry := range entries {
		if entry.Content != fmt.Sprintf("msg-%d", i) {
			t.Errorf("Position %d: expected msg-%d, got %s", i, i, entry.Content)
		}
	}
}

// dialTestServer starts the hub and an httptest server exposing it at /ws.
func dialTestServer(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	go hub.Run()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWSEvent(t *testing.T, conn *websocket.Conn) testEvent {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var event testEvent
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("Failed to unmarshal event: %v", err)
	}
	return event
}

func TestWebSocketEndToEnd(t *testing.T) {
	hub := newTestHub()
	conn := dialTestServer(t, hub)

	if event := readWSEvent(t, conn); event.Type != eventTrafficUpdate {
		t.Fatalf("Expected trafficUpdate on open, got %s", event.Type)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"connect","userName":"Alice"}`)); err != nil {
		t.Fatalf("Failed to send connect frame: %v", err)
	}

	connected := readWSEvent(t, conn)
	if connected.Type != eventConnected {
		t.Fatalf("Expected connected reply, got %s", connected.Type)
	}

	if event := readWSEvent(t, conn); event.Type != eventUserList {
		t.Fatalf("Expected userList broadcast, got %s", event.Type)
	}

	frame := fmt.Sprintf(`{"type":"message","userId":%q,"content":"hello room"}`, connected.UserID)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("Failed to send message frame: %v", err)
	}

	event := readWSEvent(t, conn)
	if event.Type != eventNewMessage || event.Message.Content != "hello room" {
		t.Fatalf("Expected the chat message back, got %+v", event)
	}
}

func TestPeriodicPush(t *testing.T) {
	hub := NewHub(&stubProvider{snap: testSnapshot()}, 50*time.Millisecond)
	conn := dialTestServer(t, hub)

	// Initial push plus at least two periodic ticks.
	for i := 0; i < 3; i++ {
		if event := readWSEvent(t, conn); event.Type != eventTrafficUpdate {
			t.Fatalf("Expected trafficUpdate #%d, got %s", i, event.Type)
		}
	}
}
