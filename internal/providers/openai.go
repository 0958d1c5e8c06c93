package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const OpenAIName = "openai"

// OpenAIConfig holds configuration for the OpenAI completer.
type OpenAIConfig struct {
	BaseURL string        // Optional (tests)
	Timeout time.Duration // HTTP timeout
	RPS     float64       // Requests per second budget for rate limiting
}

// OpenAIClient implements Completer using the official OpenAI SDK.
// A per-call SDK client is built around the caller's key; SDK-level retries
// are disabled so each test case is attempted exactly once.
type OpenAIClient struct {
	baseURL    string
	httpClient *http.Client
	rps        float64
}

// NewOpenAIClient creates a new OpenAI completer.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RPS == 0 {
		cfg.RPS = 8.0
	}
	return &OpenAIClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		rps:        cfg.RPS,
	}
}

// Name returns the provider identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

// RequestsPerSecond returns the RPS budget for rate limiting.
func (c *OpenAIClient) RequestsPerSecond() float64 {
	return c.rps
}

// Complete sends a single chat completion with a system and a user message.
func (c *OpenAIClient) Complete(ctx context.Context, apiKey, systemPrompt, userPrompt, model string) (string, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(c.httpClient),
		option.WithMaxRetries(0),
	}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(c.baseURL))
	}
	client := openai.NewClient(opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: status %d: %s", ErrAuth, apierr.StatusCode, apierr.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: status %d: %s", ErrRateLimited, apierr.StatusCode, apierr.Message)
		default:
			return fmt.Errorf("%w: status %d: %s", ErrUpstream, apierr.StatusCode, apierr.Message)
		}
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

// Verify interface
var _ Completer = (*OpenAIClient)(nil)
