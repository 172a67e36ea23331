package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vytor/codetrail/internal/logger"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error,omitempty"`
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ollama status %d: %s", e.StatusCode, e.Body)
}

// Client talks to an Ollama-compatible chat endpoint.
type Client struct {
	baseURL    string
	model      string
	options    map[string]any
	httpClient *http.Client
	log        *logger.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default client, e.g. in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTemperature pins the sampling temperature sent with every request.
func WithTemperature(t float64) Option {
	return func(c *Client) { c.options["temperature"] = t }
}

func New(baseURL, model string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		options:    map[string]any{},
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.Default().WithPrefix("ollama"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat sends messages and returns the assistant's reply text.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("ollama").WithField("model", c.model)

	body := chatRequest{Model: c.model, Messages: messages, Stream: false}
	if len(c.options) > 0 {
		body.Options = c.options
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := c.baseURL + "/api/chat"
	log.Debug("sending chat request to %s with %d messages", url, len(messages))
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		log.Error("failed to create request: %v", err)
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("chat request failed: %v", err)
		return "", err
	}
	defer resp.Body.Close()

	log.Debug("chat response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("chat request failed: status=%d, body=%s", resp.StatusCode, string(b))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Error("failed to decode chat response: %v", err)
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: %s", out.Error)
	}

	log.Info("chat completed in %v (%d chars)", time.Since(start), len(out.Message.Content))
	return out.Message.Content, nil
}
