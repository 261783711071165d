package execution

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CannedAnswer is a schema-valid answer returned by MockClient when no
// reply has been scripted for a model.
const CannedAnswer = `{
  "transformation_understanding": "Mock-Analyse: Die Transformation liest die Eingabetabellen und schreibt ein aggregiertes Ergebnis.",
  "data_lineage": ["source", "target"],
  "transformations": [
    {"step": 1, "description": "Eingabetabellen lesen"}
  ],
  "computations_valid": true,
  "error_risks": [],
  "final_feedback": "Mock-Antwort ohne Befund."
}`

// MockReply is one scripted answer of a MockClient.
type MockReply struct {
	Text     string
	Duration time.Duration
	Err      error
}

// MockCall records a request received by a MockClient.
type MockCall struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
}

// MockClient is a scripted Client for tests and dry runs. Replies are
// consumed per model in the order they were scripted; once a model's
// script is exhausted CannedAnswer is returned.
type MockClient struct {
	delay time.Duration

	mu          sync.Mutex
	scripts     map[string][]MockReply
	calls       []MockCall
	inFlight    int
	maxInFlight int
}

// NewMockClient creates a mock client with no scripted replies.
func NewMockClient() *MockClient {
	return &MockClient{scripts: map[string][]MockReply{}}
}

// WithDelay makes every request block for d, or until ctx is done.
func (m *MockClient) WithDelay(d time.Duration) *MockClient {
	m.delay = d
	return m
}

// Script appends replies for model.
func (m *MockClient) Script(model string, replies ...MockReply) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[model] = append(m.scripts[model], replies...)
	return m
}

// Send implements Client.
func (m *MockClient) Send(ctx context.Context, model, systemPrompt, userPrompt string) (RawResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Model: model, SystemPrompt: systemPrompt, UserPrompt: userPrompt})
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	reply, scripted := m.next(model)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return RawResponse{}, &TransportError{Model: model, Err: ctx.Err()}
		}
	}
	if err := ctx.Err(); err != nil {
		return RawResponse{}, &TransportError{Model: model, Err: err}
	}

	if !scripted {
		return RawResponse{Text: CannedAnswer, Duration: m.delay}, nil
	}
	if reply.Err != nil {
		return RawResponse{}, &TransportError{Model: model, Err: reply.Err}
	}
	return RawResponse{Text: reply.Text, Duration: reply.Duration}, nil
}

// Ping implements Client.
func (m *MockClient) Ping(ctx context.Context, model string) (RawResponse, error) {
	if err := ctx.Err(); err != nil {
		return RawResponse{}, &TransportError{Model: model, Err: err}
	}
	return RawResponse{Text: fmt.Sprintf("pong from %s", model)}, nil
}

// Calls returns a copy of every request received so far.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// MaxInFlight reports the highest number of concurrent Send calls observed.
func (m *MockClient) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

// next pops the next scripted reply for model. Callers hold m.mu.
func (m *MockClient) next(model string) (MockReply, bool) {
	queue := m.scripts[model]
	if len(queue) == 0 {
		return MockReply{}, false
	}
	m.scripts[model] = queue[1:]
	return queue[0], true
}
