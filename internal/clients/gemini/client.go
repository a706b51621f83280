// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/bobmcallan/panorama/internal/common"
	"github.com/bobmcallan/panorama/internal/interfaces"
)

const (
	DefaultModel          = "gemini-2.0-flash"
	DefaultTimeout        = 25 * time.Second
	DefaultRateLimitDelay = 5 * time.Second

	// NotConfiguredNotice is returned without any network call when no API
	// key is available
	NotConfiguredNotice = "AI analysis not configured: no API key set."
)

// DefaultFallbackModels is the static fallback list tried after the
// resolved primary model
var DefaultFallbackModels = []string{"gemini-1.5-pro", "gemini-1.5-flash"}

// DefaultPreferPatterns ranks model-name patterns for discovery: fast
// low-latency names first, general-purpose names second
var DefaultPreferPatterns = []string{"flash", "pro"}

// generateFunc issues one generation call against one model
type generateFunc func(ctx context.Context, model, prompt string) (string, error)

// listFunc retrieves the available model descriptors
type listFunc func(ctx context.Context) ([]modelInfo, error)

// modelInfo is the slice of a model descriptor the resolver needs
type modelInfo struct {
	Name    string
	Actions []string
}

// Client resolves a usable Gemini model and generates analysis text with
// per-candidate fallback. Generate never fails: total backend failure
// degrades to an explicit placeholder string.
type Client struct {
	model          string
	fallbacks      []string
	prefer         []string
	timeout        time.Duration
	rateLimitDelay time.Duration
	logger         *common.Logger

	generate generateFunc
	list     listFunc
	sleep    func(time.Duration)
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the default model used when discovery fails
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithFallbackModels sets the static fallback list
func WithFallbackModels(models []string) ClientOption {
	return func(c *Client) {
		if len(models) > 0 {
			c.fallbacks = models
		}
	}
}

// WithPreferPatterns sets the ranked model-name patterns used by discovery
func WithPreferPatterns(patterns []string) ClientOption {
	return func(c *Client) {
		if len(patterns) > 0 {
			c.prefer = patterns
		}
	}
}

// WithTimeout sets the per-candidate generation timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRateLimitDelay sets the pause applied after a rate-limited candidate
func WithRateLimitDelay(delay time.Duration) ClientOption {
	return func(c *Client) {
		c.rateLimitDelay = delay
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client. An empty API key is not an error:
// the client is created in a degraded state where Generate returns the
// not-configured notice without attempting any network call.
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		model:          DefaultModel,
		fallbacks:      DefaultFallbackModels,
		prefer:         DefaultPreferPatterns,
		timeout:        DefaultTimeout,
		rateLimitDelay: DefaultRateLimitDelay,
		logger:         common.NewSilentLogger(),
		sleep:          time.Sleep,
	}

	for _, opt := range opts {
		opt(c)
	}

	if apiKey == "" {
		return c, nil
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c.generate = func(ctx context.Context, model, prompt string) (string, error) {
		result, err := genaiClient.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err != nil {
			return "", err
		}
		return extractTextFromResponse(result)
	}
	c.list = func(ctx context.Context) ([]modelInfo, error) {
		page, err := genaiClient.Models.List(ctx, &genai.ListModelsConfig{})
		if err != nil {
			return nil, err
		}
		out := make([]modelInfo, 0, len(page.Items))
		for _, m := range page.Items {
			out = append(out, modelInfo{Name: m.Name, Actions: m.SupportedActions})
		}
		return out, nil
	}

	return c, nil
}

// ResolveModel discovers a usable generation model for this API key. Any
// discovery failure degrades to the configured default; resolution never
// fails the caller.
func (c *Client) ResolveModel(ctx context.Context) string {
	if c.list == nil {
		return c.model
	}

	available, err := c.list(ctx)
	if err != nil || len(available) == 0 {
		c.logger.Warn().Err(err).Str("fallback", c.model).Msg("Model discovery failed, using default")
		return c.model
	}

	capable := make([]modelInfo, 0, len(available))
	for _, m := range available {
		for _, action := range m.Actions {
			if action == "generateContent" {
				capable = append(capable, m)
				break
			}
		}
	}
	if len(capable) == 0 {
		return c.model
	}

	for _, pattern := range c.prefer {
		for _, m := range capable {
			if strings.Contains(shortName(m.Name), pattern) {
				return shortName(m.Name)
			}
		}
	}
	return shortName(capable[0].Name)
}

// Generate produces analysis text for a prompt, iterating candidate models
// until one succeeds. The returned string is either generated text or an
// explicit degraded placeholder; this method never returns an error.
func (c *Client) Generate(ctx context.Context, prompt string) string {
	if c.generate == nil {
		return NotConfiguredNotice
	}

	candidates := dedupe(append([]string{c.ResolveModel(ctx)}, c.fallbacks...))

	var diagnostics []string
	for _, model := range candidates {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		text, err := c.generate(callCtx, model, prompt)
		cancel()

		if err == nil && text != "" {
			c.logger.Debug().Str("model", model).Msg("Generation succeeded")
			return text
		}
		if err == nil {
			err = errors.New("empty response")
		}

		var apiErr genai.APIError
		switch {
		case errors.As(err, &apiErr) && apiErr.Code == 404:
			c.logger.Warn().Str("model", model).Msg("Model not found, trying next candidate")
			diagnostics = append(diagnostics, fmt.Sprintf("%s: not found", model))
		case errors.As(err, &apiErr) && apiErr.Code == 429:
			c.logger.Warn().Str("model", model).Msg("Rate limited, pausing before next candidate")
			diagnostics = append(diagnostics, fmt.Sprintf("%s: rate limited", model))
			c.sleep(c.rateLimitDelay)
		default:
			c.logger.Warn().Str("model", model).Err(err).Msg("Generation failed, trying next candidate")
			diagnostics = append(diagnostics, fmt.Sprintf("%s: %s", model, snippet(err.Error())))
		}
	}

	if len(diagnostics) == 0 {
		return "AI analysis unavailable: no candidate models configured."
	}
	return fmt.Sprintf("AI analysis unavailable after trying all candidate models (%s). Review the data manually.",
		strings.Join(diagnostics, "; "))
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

func shortName(name string) string {
	return strings.TrimPrefix(name, "models/")
}

func dedupe(models []string) []string {
	seen := make(map[string]bool, len(models))
	out := make([]string, 0, len(models))
	for _, m := range models {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

func snippet(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 120 {
		return s[:120] + "…"
	}
	return s
}

// Ensure Client implements TextGenerator
var _ interfaces.TextGenerator = (*Client)(nil)
