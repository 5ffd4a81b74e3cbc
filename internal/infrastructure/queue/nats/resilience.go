package nats

import (
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/legal-assistant/internal/infrastructure/resilience"
)

// classifyNATSError retries connection-level failures and defers everything
// else to the shared transport classifier.
func classifyNATSError(err error) resilience.ErrorClassification {
	if errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrDisconnected) ||
		errors.Is(err, nats.ErrConnectionReconnecting) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}
	return resilience.ClassifyTransportError(err)
}
