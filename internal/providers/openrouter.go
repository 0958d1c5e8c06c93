package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	OpenRouterName       = "openrouter"
	OpenRouterBaseURL    = "https://openrouter.ai/api/v1"
	OpenRouterCatalogURL = "https://openrouter.ai/api/frontend/models/find"
)

// OpenRouterConfig holds configuration for the OpenRouter client.
type OpenRouterConfig struct {
	BaseURL    string
	CatalogURL string
	Timeout    time.Duration
	RPS        float64 // Requests per second budget for rate limiting
}

// OpenRouterClient sends chat completion requests to the OpenRouter API.
// Keys are supplied per call, not held by the client: each request runs under
// the triggering user's stored credential.
type OpenRouterClient struct {
	baseURL    string
	catalogURL string
	client     *http.Client
	rps        float64
}

// NewOpenRouterClient creates a new OpenRouter client.
func NewOpenRouterClient(cfg OpenRouterConfig) *OpenRouterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenRouterBaseURL
	}
	if cfg.CatalogURL == "" {
		cfg.CatalogURL = OpenRouterCatalogURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RPS == 0 {
		cfg.RPS = 10.0
	}

	return &OpenRouterClient{
		baseURL:    cfg.BaseURL,
		catalogURL: cfg.CatalogURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		rps: cfg.RPS,
	}
}

// Name returns the client identifier.
func (c *OpenRouterClient) Name() string {
	return OpenRouterName
}

// RequestsPerSecond returns the RPS budget for rate limiting.
func (c *OpenRouterClient) RequestsPerSecond() float64 {
	return c.rps
}

// Complete sends a single chat completion request: a system message and a
// user message, in that order. Returns the first choice's text content.
// The request is attempted exactly once.
func (c *OpenRouterClient) Complete(ctx context.Context, apiKey, systemPrompt, userPrompt, model string) (string, error) {
	orReq := openRouterRequest{
		Model: model,
		Messages: []openRouterMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	bodyBytes, err := json.Marshal(orReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("HTTP-Referer", "https://github.com/promptdeck/promptdeck")
	req.Header.Set("X-Title", "Promptdeck")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %v", ErrUpstream, err)
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: status %d: %s", ErrAuth, resp.StatusCode, trim(respBody))
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: status %d: %s", ErrRateLimited, resp.StatusCode, trim(respBody))
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, trim(respBody))
	}

	var orResp openRouterResponse
	if err := json.Unmarshal(respBody, &orResp); err != nil {
		return "", fmt.Errorf("%w: failed to unmarshal response: %v", ErrUpstream, err)
	}

	if orResp.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrUpstream, orResp.Error.Message)
	}
	if len(orResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrUpstream)
	}

	return orResp.Choices[0].Message.Content, nil
}

// SearchModels queries the OpenRouter model catalog. Failures propagate to
// the caller unmodified; there is no local fallback.
func (c *OpenRouterClient) SearchModels(ctx context.Context, query string) ([]ModelInfo, error) {
	u := c.catalogURL + "?fmt=table&q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("catalog error (status %d): %s", resp.StatusCode, trim(body))
	}

	var catResp openRouterCatalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&catResp); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	models := make([]ModelInfo, 0, len(catResp.Data.Models))
	for _, m := range catResp.Data.Models {
		info := ModelInfo{
			Name:        m.ShortName,
			Author:      capitalize(m.Author),
			Description: m.Description,
			Slug:        m.Permaslug,
		}
		if m.Endpoint != nil {
			info.IsFree = m.Endpoint.Variant == "free"
		}
		models = append(models, info)
	}
	return models, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func trim(body []byte) string {
	const max = 512
	s := string(body)
	if len(s) > max {
		return s[:max]
	}
	return s
}

// OpenRouter API types

type openRouterRequest struct {
	Model    string              `json:"model"`
	Messages []openRouterMessage `json:"messages"`
}

type openRouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type openRouterCatalogResponse struct {
	Data struct {
		Models []struct {
			ShortName   string `json:"short_name"`
			Author      string `json:"author"`
			Description string `json:"description"`
			Permaslug   string `json:"permaslug"`
			Endpoint    *struct {
				Variant string `json:"variant"`
			} `json:"endpoint"`
		} `json:"models"`
	} `json:"data"`
}

// Verify interfaces
var (
	_ Completer     = (*OpenRouterClient)(nil)
	_ ModelSearcher = (*OpenRouterClient)(nil)
)
