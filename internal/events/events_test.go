package events

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/thenoetrevino/dealboard/internal/models"
)

// ============================================================================
// Test Helpers
// ============================================================================

// setupMockDaemon accepts connections on a temp socket and forwards every
// decoded message to the returned channel
func setupMockDaemon(t *testing.T) (string, chan Message) {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "test.sock")
	listener, err := (&net.ListenConfig{}).Listen(context.Background(), "unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to create mock daemon listener: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })

	messages := make(chan Message, 20)
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer func() { _ = c.Close() }()
				decoder := json.NewDecoder(c)
				for {
					var msg Message
					if err := decoder.Decode(&msg); err != nil {
						return
					}
					messages <- msg
				}
			}(conn)
		}
	}()
	return socketPath, messages
}

func receive(t *testing.T, ch chan Message) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

// recordingPublisher fails the first failUntil sends
type recordingPublisher struct {
	attempts  int
	failUntil int
	last      Event
}

func (m *recordingPublisher) SendEvent(event Event) error {
	m.last = event
	m.attempts++
	if m.attempts <= m.failUntil {
		return errors.New("simulated send failure")
	}
	return nil
}

func (m *recordingPublisher) Connect(context.Context) error                { return nil }
func (m *recordingPublisher) Listen(context.Context) (<-chan Event, error) { return nil, nil }
func (m *recordingPublisher) Subscribe(models.StageID) error               { return nil }
func (m *recordingPublisher) Close() error                                 { return nil }

// ============================================================================
// Event Tests
// ============================================================================

func TestEventMatches(t *testing.T) {
	tests := []struct {
		name  string
		event models.StageID
		sub   models.StageID
		want  bool
	}{
		{"whole board subscriber", models.StageProposal, "", true},
		{"batched event", "", models.StageProposal, true},
		{"same stage", models.StageProposal, models.StageProposal, true},
		{"other stage", models.StageDiscovery, models.StageProposal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Event{Stage: tt.event}).Matches(tt.sub); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBatchCoalesces(t *testing.T) {
	var b batch
	b.add(Event{DealID: "a", Stage: models.StageProposal, Version: 3})
	b.add(Event{DealID: "a", Stage: models.StageProposal, Version: 5})
	if b.event.DealID != "a" || b.event.Stage != models.StageProposal || b.event.Version != 5 {
		t.Errorf("same-deal batch = %+v", b.event)
	}

	b.add(Event{DealID: "b", Stage: models.StageDiscovery, Version: 4})
	if b.event.DealID != "" || b.event.Stage != "" {
		t.Errorf("mixed batch should widen to the whole board, got %+v", b.event)
	}
	if b.event.Version != 5 {
		t.Errorf("Version = %d, want highest (5)", b.event.Version)
	}
}

func TestClassifyDaemonError(t *testing.T) {
	if ClassifyDaemonError(nil) != nil {
		t.Error("nil error should classify to nil")
	}

	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"missing socket", &os.PathError{Op: "dial", Path: "x", Err: os.ErrNotExist}, ErrSocketNotFound},
		{"permission", &os.PathError{Op: "dial", Path: "x", Err: os.ErrPermission}, ErrSocketPermission},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, ErrConnectionRefused},
		{"other", errors.New("boom"), ErrDaemonNotRunning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyDaemonError(tt.err)
			if got.Code != tt.want {
				t.Errorf("Code = %v, want %v", got.Code, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Error("DaemonError should unwrap to the original error")
			}
			if got.Hint == "" {
				t.Error("expected a hint")
			}
		})
	}
}

// ============================================================================
// PublishWithRetry Tests
// ============================================================================

func TestPublishWithRetry(t *testing.T) {
	t.Run("nil client", func(t *testing.T) {
		if err := PublishWithRetry(nil, Event{}, 3); err != nil {
			t.Errorf("nil client should be a no-op, got %v", err)
		}
	})

	t.Run("first attempt", func(t *testing.T) {
		m := &recordingPublisher{}
		if err := PublishWithRetry(m, Event{DealID: "d1"}, 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.attempts != 1 || m.last.DealID != "d1" {
			t.Errorf("attempts = %d, last = %+v", m.attempts, m.last)
		}
	})

	t.Run("succeeds after retries", func(t *testing.T) {
		m := &recordingPublisher{failUntil: 2}
		if err := PublishWithRetry(m, Event{}, 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.attempts != 3 {
			t.Errorf("attempts = %d, want 3", m.attempts)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		m := &recordingPublisher{failUntil: 10}
		if err := PublishWithRetry(m, Event{}, 2); err == nil {
			t.Error("expected the final error")
		}
		if m.attempts != 2 {
			t.Errorf("attempts = %d, want 2", m.attempts)
		}
	})
}

// ============================================================================
// Client Tests
// ============================================================================

func TestNewClient(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Error("empty socket path should fail")
	}

	t.Setenv("DEALBOARD_EVENT_DEBOUNCE_MS", "25")
	c, err := NewClient(filepath.Join(t.TempDir(), "d.sock"))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer func() { _ = c.Close() }()
	if c.debounce != 25*time.Millisecond {
		t.Errorf("debounce = %v, want 25ms", c.debounce)
	}
}

func TestClientConnectFailsWithoutDaemon(t *testing.T) {
	c, _ := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	defer func() { _ = c.Close() }()

	err := c.Connect(context.Background())
	var de *DaemonError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want a DaemonError", err)
	}
	if de.Code != ErrSocketNotFound {
		t.Errorf("Code = %v, want ErrSocketNotFound", de.Code)
	}
}

func TestClientSubscribesAndBatches(t *testing.T) {
	t.Setenv("DEALBOARD_EVENT_DEBOUNCE_MS", "20")
	socketPath, messages := setupMockDaemon(t)

	c, err := NewClient(socketPath)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	sub := receive(t, messages)
	if sub.Type != "subscribe" || sub.Subscribe == nil || sub.Subscribe.Stage != "" {
		t.Fatalf("first message = %+v, want whole-board subscription", sub)
	}

	if err := c.Subscribe(models.StageNegotiation); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if msg := receive(t, messages); msg.Subscribe == nil || msg.Subscribe.Stage != models.StageNegotiation {
		t.Fatalf("subscription = %+v", msg)
	}

	for v := int64(1); v <= 5; v++ {
		if err := c.SendEvent(Event{DealID: "d1", Stage: models.StageNegotiation, Version: v}); err != nil {
			t.Fatalf("SendEvent failed: %v", err)
		}
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Everything queued before Close is flushed; the batch may be split by a tick
	var last Event
	deadline := time.After(2 * time.Second)
	for last.Version != 5 {
		select {
		case msg := <-messages:
			if msg.Type != "event" || msg.Event == nil {
				t.Fatalf("unexpected message %+v", msg)
			}
			if msg.Event.Type != EventBoardChanged || msg.Event.DealID != "d1" {
				t.Errorf("event = %+v", msg.Event)
			}
			last = *msg.Event
		case <-deadline:
			t.Fatalf("never received version 5, last = %+v", last)
		}
	}

	if err := c.SendEvent(Event{}); err == nil {
		t.Error("SendEvent after Close should fail")
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestClientCloseWithoutConnect(t *testing.T) {
	c, _ := NewClient(filepath.Join(t.TempDir(), "d.sock"))
	done := make(chan struct{})
	go func() {
		_ = c.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked on a client that never connected")
	}
}
