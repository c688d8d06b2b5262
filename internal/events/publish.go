package events

import (
	"log/slog"
	"time"
)

// PublishWithRetry sends an event, retrying with exponential backoff
// (50ms, 100ms, 200ms, ...) up to maxRetries attempts in total.
// A nil client is a no-op. The error of the final attempt is returned.
func PublishWithRetry(client EventPublisher, event Event, maxRetries int) error {
	if client == nil {
		return nil
	}

	var lastErr error
	delay := 50 * time.Millisecond

	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = client.SendEvent(event)
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("event published after retry",
					"attempt", attempt,
					"event_type", event.Type,
					"deal_id", event.DealID)
			}
			return nil
		}

		if attempt == maxRetries {
			break
		}
		slog.Debug("event publish failed, retrying",
			"attempt", attempt,
			"max_retries", maxRetries,
			"retry_delay", delay,
			"error", lastErr)
		time.Sleep(delay)
		delay *= 2
	}

	slog.Warn("event publish failed after all retries",
		"attempts", maxRetries,
		"event_type", event.Type,
		"deal_id", event.DealID,
		"error", lastErr)

	return lastErr
}
