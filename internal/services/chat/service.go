package chat

import (
	"context"
	"errors"

	"github.com/calebmah/streamchat/internal/services/chat/models"
	"github.com/calebmah/streamchat/internal/stream"
)

// ErrUpstreamUnavailable is returned when the provider credentials are
// absent. Terminal and non-retryable; no partial stream is opened.
var ErrUpstreamUnavailable = errors.New("upstream provider not configured")

// EmitFunc receives stream events in emission order. Returning an error
// aborts the completion; the gateway does not retry.
type EmitFunc func(stream.Event) error

// Service defines the interface for completion streaming
type Service interface {
	// StreamCompletion forwards a conversation to the upstream provider
	// and emits the resulting events: zero or more token deltas, then
	// exactly one usage report and one end marker. When the usage call
	// fails after tokens were emitted, the error is returned without a
	// usage report or end marker; already-emitted tokens stand.
	StreamCompletion(ctx context.Context, req models.CompletionRequest, emit EmitFunc) error

	// ResolveModel returns the effective model for a request:
	// the explicit request field, else the configured default, else a
	// hardcoded fallback.
	ResolveModel(requested string) string
}
