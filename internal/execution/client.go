package execution

import (
	"context"
	"fmt"
	"time"
)

// Client sends prompts to a text-generation service.
type Client interface {
	// Send issues one chat request and returns the raw answer text.
	Send(ctx context.Context, model, systemPrompt, userPrompt string) (RawResponse, error)

	// Ping issues a trivial request to confirm the service is reachable.
	Ping(ctx context.Context, model string) (RawResponse, error)
}

// RawResponse is the unparsed answer of one request.
type RawResponse struct {
	Text     string
	Duration time.Duration
}

// TransportError wraps every failure to obtain a response: network errors,
// timeouts, authentication failures and empty completions.
type TransportError struct {
	Model string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to model %s failed: %v", e.Model, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
