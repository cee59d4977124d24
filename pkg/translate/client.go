package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ClientConfig holds the chat-completion endpoint settings. When
// Deployment is set the Azure OpenAI URL scheme and api-key header are
// used; otherwise the endpoint is treated as OpenAI-compatible with a
// Bearer token.
type ClientConfig struct {
	Endpoint    string
	APIKey      string
	Deployment  string
	APIVersion  string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// DefaultClientConfig returns settings tuned for translation: a low
// temperature for reproducible output and a timeout that fails fast
// instead of hanging a request handler.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		APIVersion:  "2024-02-01",
		Model:       "gpt-4o",
		Temperature: 0.3,
		Timeout:     30 * time.Second,
	}
}

// ChatClient sends chat-completion requests to an Azure OpenAI or
// OpenAI-compatible endpoint.
type ChatClient struct {
	cfg    ClientConfig
	client *http.Client
}

// NewChatClient creates a client from cfg. Endpoint and APIKey are
// required.
func NewChatClient(cfg ClientConfig) (*ChatClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("chat client: endpoint is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("chat client: api key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultClientConfig().Timeout
	}
	return &ChatClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string           `json:"model,omitempty"`
	Messages       []chatMessage    `json:"messages"`
	Temperature    float64          `json:"temperature"`
	ResponseFormat *responseFormat  `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *ChatClient) url() string {
	base := strings.TrimRight(c.cfg.Endpoint, "/")
	if c.cfg.Deployment != "" {
		return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			base, c.cfg.Deployment, c.cfg.APIVersion)
	}
	return base + "/v1/chat/completions"
}

// Complete sends one system+user exchange and returns the assistant
// message content. The response_format hint asks the model for a JSON
// object, which the translator then parses.
func (c *ChatClient) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    c.cfg.Temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	if c.cfg.Deployment == "" {
		reqBody.Model = c.cfg.Model
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Deployment != "" {
		req.Header.Set("api-key", c.cfg.APIKey)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("reading chat response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding chat response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("chat API error (status %d): %s", resp.StatusCode, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
