// Package model provides provider adapters implementing core.ModelClient
// and the explicit registry they are resolved from.
package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/council-mode/council/internal/core"
)

// ProviderConfig configures one HTTP provider adapter.
type ProviderConfig struct {
	Name        string
	DisplayName string
	BaseURL     string // chat-completions compatible endpoint root
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// HTTPClient is a chat-completions style adapter for one provider. It is
// stateless apart from its configuration and safe for concurrent use; the
// dispatcher owns timeout and retry.
type HTTPClient struct {
	cfg  ProviderConfig
	http *http.Client
}

// NewHTTPClient creates an adapter for a chat-completions compatible
// provider endpoint.
func NewHTTPClient(cfg ProviderConfig, httpClient *http.Client) (*HTTPClient, error) {
	if cfg.Name == "" {
		return nil, core.ErrValidation(core.CodeInvalidConfig, "provider name is required")
	}
	if cfg.BaseURL == "" {
		return nil, core.ErrValidation(core.CodeInvalidConfig, fmt.Sprintf("provider %s: base URL is required", cfg.Name))
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = cfg.Name
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if httpClient == nil {
		// No client-side timeout: the dispatcher bounds every call with a
		// per-model context deadline.
		httpClient = &http.Client{}
	}
	return &HTTPClient{cfg: cfg, http: httpClient}, nil
}

// Name returns the provider identifier.
func (c *HTTPClient) Name() string { return c.cfg.Name }

// DisplayName returns the human-readable provider name.
func (c *HTTPClient) DisplayName() string { return c.cfg.DisplayName }

// Ping checks that the provider endpoint is reachable and the key accepted.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/models"), nil)
	if err != nil {
		return core.ErrInternal("building ping request", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return core.ErrModelFailed(c.cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return core.ErrModelFailed(c.cfg.Name, fmt.Errorf("ping returned status %d", resp.StatusCode))
	}
	return nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Query sends the prompt with optional context and returns the raw result.
func (c *HTTPClient) Query(ctx context.Context, prompt string, pctx *core.PromptContext) (*core.ClientResult, error) {
	body := chatRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}
	if pctx != nil && pctx.SystemPrompt != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: pctx.SystemPrompt})
	}
	if pctx != nil {
		for _, m := range pctx.History {
			body.Messages = append(body.Messages, chatMessage{Role: m.Role, Content: m.Content})
		}
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: prompt})

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, core.ErrInternal("encoding chat request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/chat/completions"), bytes.NewReader(payload))
	if err != nil {
		return nil, core.ErrInternal("building chat request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, core.ErrModelFailed(c.cfg.Name, err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, core.ErrModelFailed(c.cfg.Name, fmt.Errorf("decoding response: %w", err))
	}
	if resp.StatusCode >= 400 {
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return nil, core.ErrModelFailed(c.cfg.Name, fmt.Errorf("%s", msg))
	}
	if len(parsed.Choices) == 0 {
		return nil, core.ErrModelFailed(c.cfg.Name, fmt.Errorf("response contained no choices"))
	}

	return &core.ClientResult{
		Content:      parsed.Choices[0].Message.Content,
		TokensUsed:   parsed.Usage.TotalTokens,
		FinishReason: parsed.Choices[0].FinishReason,
	}, nil
}

func (c *HTTPClient) endpoint(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

func (c *HTTPClient) authorize(req *http.Request) {
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
}

var _ core.ModelClient = (*HTTPClient)(nil)
