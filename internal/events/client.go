package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/thenoetrevino/dealboard/internal/models"
)

// Client is a connection to the dealboard daemon.
// It batches outgoing board events, receives broadcasts, and reconnects
// with exponential backoff when the daemon goes away.
type Client struct {
	socketPath string
	conn       net.Conn
	encoder    *json.Encoder
	decoder    *json.Decoder
	mu         sync.Mutex

	// Batching
	eventQueue   chan Event
	debounce     time.Duration
	closed       bool
	batcherOnce  sync.Once
	batcherAlive bool
	batcherDone  chan struct{}

	// Reconnection
	maxRetries int
	baseDelay  time.Duration

	stage        models.StageID // current subscription
	lastSequence int64

	ctx    context.Context
	cancel context.CancelFunc
}

// NewClient creates an unconnected client for the daemon socket at socketPath.
// DEALBOARD_EVENT_DEBOUNCE_MS overrides the 100ms batching window.
func NewClient(socketPath string) (*Client, error) {
	if socketPath == "" {
		return nil, errors.New("socket path cannot be empty")
	}

	debounceMs := 100
	if v := os.Getenv("DEALBOARD_EVENT_DEBOUNCE_MS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			debounceMs = parsed
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		socketPath:  socketPath,
		eventQueue:  make(chan Event, 100),
		debounce:    time.Duration(debounceMs) * time.Millisecond,
		maxRetries:  5,
		baseDelay:   time.Second,
		ctx:         ctx,
		cancel:      cancel,
		batcherDone: make(chan struct{}),
	}, nil
}

// Connect dials the daemon and (re)sends the current subscription
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("client is closed")
	}

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to dial daemon socket: %w", ClassifyDaemonError(err))
	}

	c.conn = conn
	c.encoder = json.NewEncoder(conn)
	c.decoder = json.NewDecoder(conn)

	msg := Message{
		Version:   ProtocolVersion,
		Type:      "subscribe",
		Subscribe: &SubscribeMessage{Stage: c.stage},
	}
	if err := c.encoder.Encode(msg); err != nil {
		_ = conn.Close()
		c.conn = nil
		return fmt.Errorf("failed to send subscription: %w", err)
	}

	c.batcherOnce.Do(func() {
		c.batcherAlive = true
		go c.runBatcher()
	})
	return nil
}

// SendEvent queues an event without blocking.
// Events are coalesced and flushed once per debounce window.
func (c *Client) SendEvent(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("client is closed")
	}

	select {
	case c.eventQueue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// batch coalesces queued events into one notification
type batch struct {
	pending bool
	event   Event
}

func (b *batch) add(e Event) {
	if !b.pending {
		b.pending = true
		b.event = e
		return
	}
	if b.event.DealID != e.DealID {
		b.event.DealID = ""
	}
	if b.event.Stage != e.Stage {
		b.event.Stage = ""
	}
	if e.Version > b.event.Version {
		b.event.Version = e.Version
	}
}

func (c *Client) runBatcher() {
	defer close(c.batcherDone)

	ticker := time.NewTicker(c.debounce)
	defer ticker.Stop()

	var pending batch
	flush := func() {
		if !pending.pending {
			return
		}
		e := pending.event
		e.Type = EventBoardChanged
		e.Timestamp = time.Now()
		if err := c.write(Message{Type: "event", Event: &e}); err != nil && !isConnectionError(err) {
			slog.Warn("failed to send batched event", "error", err)
		}
		pending = batch{}
	}

	for {
		select {
		case <-c.ctx.Done():
			flush()
			return
		case e, ok := <-c.eventQueue:
			if !ok {
				flush()
				return
			}
			pending.add(e)
		case <-ticker.C:
			flush()
		}
	}
}

func (c *Client) write(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	msg.Version = ProtocolVersion
	return c.encoder.Encode(msg)
}

// Listen delivers daemon broadcasts on the returned channel.
// The channel closes when ctx is done or reconnection gives up.
func (c *Client) Listen(ctx context.Context) (<-chan Event, error) {
	out := make(chan Event, 10)
	go c.listenLoop(ctx, out)
	return out, nil
}

func (c *Client) listenLoop(ctx context.Context, out chan Event) {
	defer close(out)

	for {
		err := c.readEvents(ctx, out)
		if ctx.Err() != nil || c.ctx.Err() != nil {
			return
		}
		slog.Info("daemon connection lost, reconnecting", "error", err)
		if !c.reconnect(ctx) {
			slog.Warn("giving up on daemon", "attempts", c.maxRetries)
			return
		}
		// A restarted daemon numbers its broadcasts from scratch
		c.lastSequence = 0
	}
}

func (c *Client) readEvents(ctx context.Context, out chan Event) error {
	for {
		c.mu.Lock()
		if c.conn == nil {
			c.mu.Unlock()
			return ErrNotConnected
		}
		if err := c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("failed to set read deadline: %w", err)
		}
		decoder := c.decoder
		c.mu.Unlock()

		var msg Message
		if err := decoder.Decode(&msg); err != nil {
			return fmt.Errorf("failed to decode message: %w", err)
		}

		switch msg.Type {
		case "event":
			// Duplicate or replayed broadcasts are dropped
			if msg.Event == nil || msg.Event.SequenceID <= c.lastSequence {
				continue
			}
			c.lastSequence = msg.Event.SequenceID
			select {
			case out <- *msg.Event:
			case <-ctx.Done():
				return ctx.Err()
			}
		case "ping":
			if err := c.write(Message{Type: "pong"}); err != nil && !isConnectionError(err) {
				slog.Warn("failed to answer ping", "error", err)
			}
		}
	}
}

func isConnectionError(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, ErrNotConnected)
}

func (c *Client) reconnect(ctx context.Context) bool {
	delay := c.baseDelay

	for i := 1; i <= c.maxRetries; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-c.ctx.Done():
			return false
		case <-time.After(delay):
		}

		c.mu.Lock()
		if c.conn != nil {
			_ = c.conn.Close()
			c.conn = nil
		}
		c.mu.Unlock()

		if err := c.Connect(ctx); err == nil {
			slog.Info("reconnected to daemon", "attempt", i)
			return true
		}
		slog.Debug("reconnect attempt failed", "attempt", i, "max", c.maxRetries, "retry_in", delay)
		delay *= 2
	}
	return false
}

// Subscribe narrows delivered events to one stage. An empty stage watches the whole board.
func (c *Client) Subscribe(stage models.StageID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stage = stage
	if c.conn == nil {
		return ErrNotConnected
	}
	return c.encoder.Encode(Message{
		Version:   ProtocolVersion,
		Type:      "subscribe",
		Subscribe: &SubscribeMessage{Stage: stage},
	})
}

// Close flushes pending events, stops the batcher and closes the connection.
// It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.eventQueue)
	alive := c.batcherAlive
	c.mu.Unlock()

	if alive {
		<-c.batcherDone
	}
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
