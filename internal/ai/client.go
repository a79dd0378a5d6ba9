package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gojektech/heimdall/v6"
	"github.com/gojektech/heimdall/v6/httpclient"

	"github.com/Funya-okina/sightseeingLog/internal/config"
)

const (
	httpTimeout       = 120 * time.Second
	retryBackoff      = 2 * time.Second
	retryJitter       = 100 * time.Millisecond
	imageSize         = "1024x1536"
	maxNarrativeChars = 400
)

// Client talks to an OpenAI-compatible API for all four collaborators: cover
// image, narrative, itinerary inference, and receipt extraction.
type Client struct {
	apiKey     string
	baseURL    string
	chatModel  string
	imageModel string
	http       *httpclient.Client
}

// NewClient creates a collaborator client with retrying transport
func NewClient(cfg config.AIConfig) *Client {
	backoff := heimdall.NewConstantBackoff(retryBackoff, retryJitter)
	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(httpTimeout),
		httpclient.WithRetrier(heimdall.NewRetrier(backoff)),
		httpclient.WithRetryCount(cfg.Retries),
	)
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		chatModel:  cfg.ChatModel,
		imageModel: cfg.ImageModel,
		http:       client,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
	N      int    `json:"n"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// post sends a JSON request and decodes a JSON response. A missing API key is
// reported as ErrMissingCredentials before any network activity.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	if c.apiKey == "" {
		return ErrMissingCredentials
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("api error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("api error: unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// chat runs a single-turn chat completion and returns the assistant text
func (c *Client) chat(ctx context.Context, messages []chatMessage) (string, error) {
	var resp chatResponse
	if err := c.post(ctx, "/chat/completions", chatRequest{Model: c.chatModel, Messages: messages}, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrUnprocessable)
	}
	return resp.Choices[0].Message.Content, nil
}

// StripFence removes a surrounding Markdown code fence from an AI response so
// the remainder can be parsed as JSON.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// Drop the language tag line ("json" etc.).
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
