// Package daemon implements dealboard-daemon, which fans board change events
// out to every connected CLI over a Unix domain socket.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thenoetrevino/dealboard/internal/events"
	"github.com/thenoetrevino/dealboard/internal/models"
)

// Timing of the health monitor. Variables so tests can shorten them.
var (
	pingInterval   = 30 * time.Second
	healthInterval = 60 * time.Second
	staleAfter     = 90 * time.Second
)

type client struct {
	conn      net.Conn
	send      chan events.Message
	closeOnce sync.Once

	mu       sync.Mutex
	stage    models.StageID // "" = whole board
	lastPong time.Time
	closed   bool
}

func (c *client) subscribed(e events.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return e.Matches(c.stage)
}

// Options tunes server buffers
type Options struct {
	BroadcastBuffer int // queued events awaiting fan-out
	ClientBuffer    int // queued messages per subscriber
}

// DefaultOptions returns the buffer sizes used by dealboard-daemon
func DefaultOptions() Options {
	return Options{BroadcastBuffer: 100, ClientBuffer: 10}
}

// Server is the event daemon
type Server struct {
	socketPath string
	listener   net.Listener
	opts       Options

	mu      sync.RWMutex
	clients map[*client]struct{}

	broadcast    chan events.Event
	sequence     atomic.Int64
	metrics      *Metrics
	shutdownOnce sync.Once
	done         chan struct{}
}

// NewServer listens on socketPath, replacing a stale socket file if present
func NewServer(socketPath string, opts Options) (*Server, error) {
	if opts.BroadcastBuffer <= 0 {
		opts.BroadcastBuffer = DefaultOptions().BroadcastBuffer
	}
	if opts.ClientBuffer <= 0 {
		opts.ClientBuffer = DefaultOptions().ClientBuffer
	}

	if err := os.MkdirAll(filepath.Dir(socketPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}
	if err := os.Remove(socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove stale socket: %w", err)
	}

	lc := net.ListenConfig{}
	listener, err := lc.Listen(context.Background(), "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket listener: %w", err)
	}

	return &Server{
		socketPath: socketPath,
		listener:   listener,
		opts:       opts,
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan events.Event, opts.BroadcastBuffer),
		metrics:    NewMetrics(),
		done:       make(chan struct{}),
	}, nil
}

// Metrics returns the live daemon counters
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start serves until ctx is cancelled or Shutdown is called, then shuts down
func (s *Server) Start(ctx context.Context) error {
	slog.Info("daemon starting", "socket", s.socketPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	acceptErr := make(chan error, 1)
	go func() { acceptErr <- s.acceptLoop() }()
	go s.broadcastLoop(ctx)
	go s.monitorHealth(ctx)

	var err error
	select {
	case <-ctx.Done():
	case err = <-acceptErr:
		if err != nil {
			slog.Error("accept loop failed", "error", err)
		}
	}

	if shutdownErr := s.Shutdown(); err == nil {
		err = shutdownErr
	}
	return err
}

func (s *Server) acceptLoop() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept error: %w", err)
		}

		c := &client{
			conn:     conn,
			send:     make(chan events.Message, s.opts.ClientBuffer),
			lastPong: time.Now(),
		}
		s.mu.Lock()
		s.clients[c] = struct{}{}
		count := len(s.clients)
		s.mu.Unlock()
		s.metrics.ConnectedClients.Store(int32(count))
		slog.Debug("client connected", "clients", count)

		go s.readClient(c)
		go s.writeClient(c)
	}
}

func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-s.broadcast:
			event.SequenceID = s.sequence.Add(1)
			s.metrics.Broadcasts.Add(1)

			msg := events.Message{Version: events.ProtocolVersion, Type: "event", Event: &event}
			for _, c := range s.snapshotClients() {
				if c.subscribed(event) && !s.sendToClient(c, msg) {
					slog.Debug("client queue full, event dropped", "sequence", event.SequenceID)
				}
			}
		}
	}
}

func (s *Server) readClient(c *client) {
	defer s.removeClient(c)

	decoder := json.NewDecoder(c.conn)
	for {
		var msg events.Message
		if err := decoder.Decode(&msg); err != nil {
			return
		}
		if msg.Version != 0 && msg.Version != events.ProtocolVersion {
			slog.Warn("protocol version mismatch", "got", msg.Version, "want", events.ProtocolVersion)
		}

		switch msg.Type {
		case "event":
			if msg.Event == nil {
				continue
			}
			s.metrics.EventsReceived.Add(1)
			if err := s.Broadcast(*msg.Event); err != nil {
				slog.Warn("dropping client event", "error", err)
			}
		case "subscribe":
			if msg.Subscribe == nil {
				continue
			}
			c.mu.Lock()
			c.stage = msg.Subscribe.Stage
			c.mu.Unlock()
			s.sendToClient(c, events.Message{Version: events.ProtocolVersion, Type: "ack"})
			slog.Debug("client subscribed", "stage", msg.Subscribe.Stage)
		case "pong":
			c.mu.Lock()
			c.lastPong = time.Now()
			c.mu.Unlock()
		}
	}
}

func (s *Server) writeClient(c *client) {
	encoder := json.NewEncoder(c.conn)
	for msg := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}
		if err := encoder.Encode(msg); err != nil {
			return
		}
	}
}

func (s *Server) monitorHealth(ctx context.Context) {
	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()
	healthTicker := time.NewTicker(healthInterval)
	defer healthTicker.Stop()

	ping := events.Message{Version: events.ProtocolVersion, Type: "ping"}
	for {
		select {
		case <-ctx.Done():
			return
		case <-pingTicker.C:
			for _, c := range s.snapshotClients() {
				s.sendToClient(c, ping)
			}
		case <-healthTicker.C:
			now := time.Now()
			for _, c := range s.snapshotClients() {
				c.mu.Lock()
				silent := now.Sub(c.lastPong)
				c.mu.Unlock()
				if silent > staleAfter {
					slog.Info("removing stale client", "silent_for", silent.Round(time.Second).String())
					s.removeClient(c)
				}
			}
			slog.Info("daemon metrics", s.metrics.Snapshot().LogAttrs()...)
		}
	}
}

// Broadcast queues an event for fan-out without blocking
func (s *Server) Broadcast(event events.Event) error {
	select {
	case <-s.done:
		return errors.New("daemon is shutting down")
	default:
	}
	select {
	case s.broadcast <- event:
		return nil
	default:
		return errors.New("broadcast channel full")
	}
}

// Shutdown closes the listener and every client connection and removes the socket file.
// It is safe to call more than once.
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		slog.Info("daemon shutting down")
		close(s.done)

		if closeErr := s.listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
			err = closeErr
		}
		for _, c := range s.snapshotClients() {
			s.removeClient(c)
		}
		if rmErr := os.Remove(s.socketPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.Warn("failed to remove socket file", "error", rmErr)
		}
	})
	return err
}

func (s *Server) snapshotClients() []*client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		result = append(result, c)
	}
	return result
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	_, present := s.clients[c]
	delete(s.clients, c)
	count := len(s.clients)
	s.mu.Unlock()

	c.closeOnce.Do(func() {
		_ = c.conn.Close()
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
	})
	if present {
		s.metrics.ConnectedClients.Store(int32(count))
		slog.Debug("client disconnected", "clients", count)
	}
}

// sendToClient queues msg without blocking; it reports false when the queue is full
func (s *Server) sendToClient(c *client, msg events.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		s.metrics.EventsSent.Add(1)
		return true
	default:
		s.metrics.EventsDropped.Add(1)
		return false
	}
}
