package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thenoetrevino/dealboard/internal/daemon"
	"github.com/thenoetrevino/dealboard/internal/events"
	"github.com/thenoetrevino/dealboard/internal/models"
)

// EventTimeout bounds every wait on daemon traffic in tests
const EventTimeout = 3 * time.Second

// Daemon is an event daemon running on a temporary socket for one test
type Daemon struct {
	Server     *daemon.Server
	SocketPath string
}

// StartDaemon starts a daemon on a socket inside t.TempDir and stops it at cleanup
func StartDaemon(t *testing.T) *Daemon {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "dealboard-test.sock")
	server, err := daemon.NewServer(socketPath, daemon.DefaultOptions())
	if err != nil {
		t.Fatalf("Failed to create test daemon: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		if err := server.Shutdown(); err != nil {
			t.Logf("Warning: daemon shutdown error during cleanup: %v", err)
		}
	})

	go func() {
		if err := server.Start(ctx); err != nil {
			t.Logf("Server error: %v", err)
		}
	}()

	d := &Daemon{Server: server, SocketPath: socketPath}
	Eventually(t, func() bool {
		_, err := os.Stat(socketPath)
		return err == nil
	}, "daemon socket created")
	return d
}

// Client connects a new events client and closes it at cleanup
func (d *Daemon) Client(t *testing.T) *events.Client {
	t.Helper()

	client, err := events.NewClient(d.SocketPath)
	if err != nil {
		t.Fatalf("Failed to create test client: %v", err)
	}
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("Warning: client close error during cleanup: %v", err)
		}
	})

	want := d.Server.Metrics().ConnectedClients.Load() + 1
	ctx, cancel := context.WithTimeout(context.Background(), EventTimeout)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect test client: %v", err)
	}
	Eventually(t, func() bool {
		return d.Server.Metrics().ConnectedClients.Load() >= want
	}, "daemon registered client")
	return client
}

// Subscribe connects a client watching stage ("" = whole board) and returns its events
func (d *Daemon) Subscribe(t *testing.T, stage models.StageID) <-chan events.Event {
	t.Helper()

	client := d.Client(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ch, err := client.Listen(ctx)
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	if err := client.Subscribe(stage); err != nil {
		t.Fatalf("Failed to subscribe to %q: %v", stage, err)
	}
	// the subscribe message has no acknowledgement
	time.Sleep(50 * time.Millisecond)
	return ch
}

// NextBoardChange returns the next board event or fails the test after EventTimeout
func NextBoardChange(t *testing.T, ch <-chan events.Event) events.Event {
	t.Helper()

	select {
	case event, ok := <-ch:
		if !ok {
			t.Fatal("Event channel closed unexpectedly")
		}
		return event
	case <-time.After(EventTimeout):
		t.Fatalf("Timeout waiting for board change after %v", EventTimeout)
		return events.Event{}
	}
}

// ExpectNoBoardChange fails the test if an event arrives within wait
func ExpectNoBoardChange(t *testing.T, ch <-chan events.Event, wait time.Duration) {
	t.Helper()

	select {
	case event := <-ch:
		t.Fatalf("Unexpected board change: deal=%s stage=%s version=%d", event.DealID, event.Stage, event.Version)
	case <-time.After(wait):
	}
}

// Eventually polls condition until it holds, failing the test after EventTimeout
func Eventually(t *testing.T, condition func() bool, description string) {
	t.Helper()

	deadline := time.Now().Add(EventTimeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Timeout waiting for condition: %s", description)
}
