package execution

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/spboyer/lineagebench/internal/config"
)

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	client       *openai.Client
	defaultModel string
	temperature  float32
	maxTokens    int
	timeout      time.Duration
	stream       bool
	now          func() time.Time
}

// OpenAIOption configures an OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithStreaming makes the client assemble answers from streamed deltas.
func WithStreaming(enabled bool) OpenAIOption {
	return func(c *OpenAIClient) {
		c.stream = enabled
	}
}

// NewOpenAIClient builds a client from service settings.
func NewOpenAIClient(settings *config.Settings, opts ...OpenAIOption) *OpenAIClient {
	cfg := openai.DefaultConfig(settings.APIKey)
	cfg.BaseURL = strings.TrimRight(settings.BaseURL, "/")

	c := &OpenAIClient{
		client:       openai.NewClientWithConfig(cfg),
		defaultModel: settings.DefaultModelAlias,
		temperature:  requestTemperature(settings.Temperature),
		maxTokens:    settings.MaxTokens,
		timeout:      settings.RequestTimeout(),
		now:          time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Send implements Client. An empty model uses DEFAULT_MODEL_ALIAS.
func (c *OpenAIClient) Send(ctx context.Context, model, systemPrompt, userPrompt string) (RawResponse, error) {
	model = c.modelOrDefault(model)
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature:         c.temperature,
		MaxCompletionTokens: c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	return c.do(ctx, model, req)
}

// Ping implements Client. The request carries no response format so any
// reply counts as success.
func (c *OpenAIClient) Ping(ctx context.Context, model string) (RawResponse, error) {
	model = c.modelOrDefault(model)
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "ping"},
		},
		Temperature: c.temperature,
	}
	return c.do(ctx, model, req)
}

// requestTemperature maps 0 to the smallest positive float32, since go-openai
// omits a zero Temperature from the request body.
func requestTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

func (c *OpenAIClient) modelOrDefault(model string) string {
	if model == "" {
		return c.defaultModel
	}
	return model
}

func (c *OpenAIClient) do(ctx context.Context, model string, req openai.ChatCompletionRequest) (RawResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	slog.Debug("Sending chat completion", "model", model, "stream", c.stream)
	start := c.now()

	var (
		text string
		err  error
	)
	if c.stream {
		text, err = c.completeStream(ctx, req)
	} else {
		text, err = c.complete(ctx, req)
	}
	if err != nil {
		return RawResponse{}, &TransportError{Model: model, Err: err}
	}
	return RawResponse{Text: text, Duration: c.now().Sub(start)}, nil
}

func (c *OpenAIClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("response contained no choices")
	}
	slog.Debug("Received chat completion", "model", req.Model, "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) completeStream(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close() //nolint:errcheck

	var sb strings.Builder
	chunks := 0
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		chunks++
		if len(resp.Choices) > 0 {
			sb.WriteString(resp.Choices[0].Delta.Content)
		}
	}
	if chunks == 0 {
		return "", errors.New("stream ended without any chunks")
	}
	return sb.String(), nil
}
