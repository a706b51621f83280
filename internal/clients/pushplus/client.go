// Package pushplus provides a client for the PushPlus notification sink
package pushplus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/panorama/internal/common"
	"github.com/bobmcallan/panorama/internal/interfaces"
)

const (
	DefaultBaseURL = "https://www.pushplus.plus"
	DefaultTimeout = 15 * time.Second

	sendPath = "/send"
)

// Client delivers the final report document as a fire-and-forget
// notification
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new PushPlus client
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// sendRequest is the sink's expected payload
type sendRequest struct {
	Token    string `json:"token"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Template string `json:"template"`
}

// Send posts the document to the sink with newlines rendered as HTML line
// breaks. The response body is not validated; a non-200 status is reported
// as an error for the caller to log.
func (c *Client) Send(ctx context.Context, title, content string) error {
	if c.token == "" {
		return fmt.Errorf("no notification token configured")
	}

	payload := sendRequest{
		Token:    c.token,
		Title:    title,
		Content:  strings.ReplaceAll(content, "\n", "<br>"),
		Template: "html",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("title", title).Msg("Sending notification")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notification sink returned status %d", resp.StatusCode)
	}

	return nil
}

// Ensure Client implements Notifier
var _ interfaces.Notifier = (*Client)(nil)
