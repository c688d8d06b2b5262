package daemon

import (
	"sync/atomic"
	"time"
)

// Metrics holds daemon counters. All fields are safe for concurrent use.
type Metrics struct {
	EventsReceived   atomic.Int64 // board events published by clients
	EventsSent       atomic.Int64 // messages queued to subscribers
	EventsDropped    atomic.Int64 // messages skipped because a subscriber was slow
	Broadcasts       atomic.Int64 // events fanned out
	ConnectedClients atomic.Int32
	StartTime        time.Time
}

// NewMetrics creates zeroed metrics starting now
func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

// MetricsSnapshot is a point-in-time copy of the counters
type MetricsSnapshot struct {
	EventsReceived   int64         `json:"events_received"`
	EventsSent       int64         `json:"events_sent"`
	EventsDropped    int64         `json:"events_dropped"`
	Broadcasts       int64         `json:"broadcasts"`
	ConnectedClients int32         `json:"connected_clients"`
	StartTime        time.Time     `json:"start_time"`
	Uptime           time.Duration `json:"uptime"`
}

// Snapshot copies the current counters
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsReceived:   m.EventsReceived.Load(),
		EventsSent:       m.EventsSent.Load(),
		EventsDropped:    m.EventsDropped.Load(),
		Broadcasts:       m.Broadcasts.Load(),
		ConnectedClients: m.ConnectedClients.Load(),
		StartTime:        m.StartTime,
		Uptime:           time.Since(m.StartTime),
	}
}

// LogAttrs returns the snapshot as slog key/value pairs
func (s MetricsSnapshot) LogAttrs() []any {
	return []any{
		"events_received", s.EventsReceived,
		"events_sent", s.EventsSent,
		"events_dropped", s.EventsDropped,
		"broadcasts", s.Broadcasts,
		"connected_clients", s.ConnectedClients,
		"uptime", s.Uptime.Round(time.Second).String(),
	}
}
