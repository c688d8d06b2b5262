package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/thenoetrevino/dealboard/internal/board"
	"github.com/thenoetrevino/dealboard/internal/database"
	"github.com/thenoetrevino/dealboard/internal/events"
	"github.com/thenoetrevino/dealboard/internal/models"
	"github.com/thenoetrevino/dealboard/internal/services/commit"
)

// BaseTime is the first timestamp handed out by TestClock
var BaseTime = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

// TestClock returns a clock that advances one second per call
func TestClock() func() time.Time {
	var mu sync.Mutex
	tick := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return BaseTime.Add(time.Duration(tick) * time.Second)
	}
}

// SequentialIDs returns a generator producing d1, d2, ...
func SequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("d%d", n)
	}
}

// NewTestBoard creates a board with the default stages, a ticking clock and sequential ids
func NewTestBoard(t *testing.T) *board.Board {
	t.Helper()
	return board.New(board.DefaultStageSet(),
		board.WithClock(TestClock()),
		board.WithIDGenerator(SequentialIDs()))
}

// Setup bundles a committer with its in-memory store and recorded events
type Setup struct {
	Board     *board.Board
	Store     *database.SnapshotRepo
	Publisher *RecordingPublisher
	Committer *commit.Committer
}

// SetupCommitter wires a test board to an in-memory SQLite store and a recording publisher
func SetupCommitter(t *testing.T) *Setup {
	t.Helper()
	b := NewTestBoard(t)
	store := database.NewSnapshotRepo(SetupTestDB(t))
	pub := &RecordingPublisher{}
	return &Setup{
		Board:     b,
		Store:     store,
		Publisher: pub,
		Committer: commit.New(b, store, pub, 0),
	}
}

// RecordingPublisher records every event it is asked to send
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	Err    error // returned by SendEvent when set
}

var _ events.EventPublisher = (*RecordingPublisher)(nil)

func (p *RecordingPublisher) Connect(ctx context.Context) error { return nil }

func (p *RecordingPublisher) SendEvent(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Listen(ctx context.Context) (<-chan events.Event, error) {
	ch := make(chan events.Event)
	close(ch)
	return ch, nil
}

func (p *RecordingPublisher) Subscribe(stage models.StageID) error { return nil }

func (p *RecordingPublisher) Close() error { return nil }

// Events returns a copy of the recorded events
func (p *RecordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

// Reset forgets recorded events
func (p *RecordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
