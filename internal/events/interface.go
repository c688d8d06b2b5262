package events

import (
	"context"

	"github.com/thenoetrevino/dealboard/internal/models"
)

// EventPublisher defines the interface for sending and receiving board events.
// Services depend on it so tests can record events without a daemon.
type EventPublisher interface {
	// Connect establishes a connection to the daemon socket
	Connect(ctx context.Context) error

	// SendEvent queues an event to be sent to the daemon
	SendEvent(event Event) error

	// Listen starts listening for events from the daemon
	Listen(ctx context.Context) (<-chan Event, error)

	// Subscribe narrows the subscription to one stage ("" = whole board)
	Subscribe(stage models.StageID) error

	// Close closes the connection to the daemon and stops all goroutines
	Close() error
}

var _ EventPublisher = (*Client)(nil)
