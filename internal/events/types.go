package events

import (
	"time"

	"github.com/thenoetrevino/dealboard/internal/models"
)

// ProtocolVersion is the wire protocol version spoken by clients and the daemon
const ProtocolVersion = 1

// EventType indicates what kind of change occurred
type EventType string

const (
	EventBoardChanged EventType = "board_changed"
	EventPing         EventType = "ping"
	EventPong         EventType = "pong"
)

// Event represents a board change notification
type Event struct {
	Type       EventType
	DealID     string         // Deal that changed; empty when a batch touched several deals
	Stage      models.StageID // Stage affected; empty when a batch touched several stages
	Version    int64          // Board version after the change
	Timestamp  time.Time      // When the event occurred
	SequenceID int64          // Monotonically increasing, assigned by the daemon
}

// Matches reports whether a subscriber watching stage should receive the event.
// An empty stage on either side means "all stages".
func (e Event) Matches(stage models.StageID) bool {
	return stage == "" || e.Stage == "" || e.Stage == stage
}

// SubscribeMessage is sent by clients to choose which stage they watch
type SubscribeMessage struct {
	Stage models.StageID // "" = whole board
}

// Message wraps events and control messages for the wire protocol
type Message struct {
	Version   int               `json:",omitempty"`
	Type      string            // "event", "subscribe", "ping", "pong", "ack"
	Event     *Event            `json:",omitempty"`
	Subscribe *SubscribeMessage `json:",omitempty"`
}
