package daemon

import (
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/thenoetrevino/dealboard/internal/events"
	"github.com/thenoetrevino/dealboard/internal/models"
)

// ============================================================================
// Test Helpers
// ============================================================================

func startServer(t *testing.T) (*Server, string) {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "d.sock")
	srv, err := NewServer(socketPath, DefaultOptions())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})
	return srv, socketPath
}

// rawClient speaks the wire protocol directly
type rawClient struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
}

func dial(t *testing.T, socketPath string, stage models.StageID) *rawClient {
	t.Helper()
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	c := &rawClient{conn: conn, enc: json.NewEncoder(conn), dec: json.NewDecoder(conn)}
	if err := c.enc.Encode(events.Message{
		Version:   events.ProtocolVersion,
		Type:      "subscribe",
		Subscribe: &events.SubscribeMessage{Stage: stage},
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if msg := c.next(t); msg.Type != "ack" {
		t.Fatalf("expected ack, got %+v", msg)
	}
	return c
}

func (c *rawClient) next(t *testing.T) events.Message {
	t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg events.Message
	if err := c.dec.Decode(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return msg
}

func (c *rawClient) nothing(t *testing.T) {
	t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	var msg events.Message
	if err := c.dec.Decode(&msg); err == nil {
		t.Fatalf("expected no message, got %+v", msg)
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// ============================================================================
// Server Tests
// ============================================================================

func TestServerFansOutByStage(t *testing.T) {
	srv, socketPath := startServer(t)

	all := dial(t, socketPath, "")
	proposal := dial(t, socketPath, models.StageProposal)
	discovery := dial(t, socketPath, models.StageDiscovery)
	eventually(t, func() bool { return srv.Metrics().ConnectedClients.Load() == 3 })

	publish := events.Event{Type: events.EventBoardChanged, DealID: "d1", Stage: models.StageProposal, Version: 7}
	if err := all.enc.Encode(events.Message{Type: "event", Event: &publish}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	for _, c := range []*rawClient{all, proposal} {
		msg := c.next(t)
		if msg.Type != "event" || msg.Event.DealID != "d1" || msg.Event.Version != 7 {
			t.Errorf("got %+v", msg)
		}
		if msg.Event.SequenceID != 1 {
			t.Errorf("SequenceID = %d, want 1", msg.Event.SequenceID)
		}
	}
	discovery.nothing(t)

	m := srv.Metrics().Snapshot()
	if m.EventsReceived != 1 || m.Broadcasts != 1 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestServerBroadcastSequence(t *testing.T) {
	srv, socketPath := startServer(t)
	c := dial(t, socketPath, "")

	for i := 0; i < 3; i++ {
		if err := srv.Broadcast(events.Event{Type: events.EventBoardChanged, Version: int64(i)}); err != nil {
			t.Fatalf("Broadcast failed: %v", err)
		}
	}
	for want := int64(1); want <= 3; want++ {
		if got := c.next(t).Event.SequenceID; got != want {
			t.Errorf("SequenceID = %d, want %d", got, want)
		}
	}
}

func TestServerTracksDisconnects(t *testing.T) {
	srv, socketPath := startServer(t)
	c := dial(t, socketPath, "")
	eventually(t, func() bool { return srv.Metrics().ConnectedClients.Load() == 1 })

	_ = c.conn.Close()
	eventually(t, func() bool { return srv.Metrics().ConnectedClients.Load() == 0 })
}

func TestServerWithEventsClient(t *testing.T) {
	t.Setenv("DEALBOARD_EVENT_DEBOUNCE_MS", "10")
	_, socketPath := startServer(t)
	watcher := dial(t, socketPath, "")

	publisher, err := events.NewClient(socketPath)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if err := publisher.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer func() { _ = publisher.Close() }()

	if err := publisher.SendEvent(events.Event{DealID: "d9", Stage: models.StageClosedWon, Version: 2}); err != nil {
		t.Fatalf("SendEvent failed: %v", err)
	}

	msg := watcher.next(t)
	if msg.Event == nil || msg.Event.DealID != "d9" || msg.Event.Type != events.EventBoardChanged {
		t.Errorf("watcher got %+v", msg)
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	srv, err := NewServer(filepath.Join(t.TempDir(), "d.sock"), Options{})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	if err := srv.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := srv.Shutdown(); err != nil {
		t.Errorf("second Shutdown failed: %v", err)
	}
	if err := srv.Broadcast(events.Event{}); err == nil {
		t.Error("Broadcast after Shutdown should fail")
	}
}
