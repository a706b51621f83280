// Package eastmoney provides a client for domestic daily price history
package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/panorama/internal/common"
	"github.com/bobmcallan/panorama/internal/interfaces"
	"github.com/bobmcallan/panorama/internal/models"
)

const (
	DefaultBaseURL      = "https://push2his.eastmoney.com"
	DefaultIndexBaseURL = "https://quotes.sina.cn"
	DefaultTimeout      = 30 * time.Second
	DefaultRateLimit    = 5 // requests per second

	klinePath = "/api/qt/stock/kline/get"
	indexPath = "/cn/api/json_v2.php/CN_MarketDataService.getKLineData"
)

// Client fetches domestic daily bars: equities and funds from the EastMoney
// kline endpoint, the market index from the Sina daily-kline endpoint
type Client struct {
	baseURL      string
	indexBaseURL string
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the kline base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithIndexBaseURL sets the index-quote base URL
func WithIndexBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.indexBaseURL = baseURL
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new domestic market data client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		indexBaseURL: DefaultIndexBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an upstream API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("eastmoney API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request and returns the raw body
func (c *Client) get(ctx context.Context, baseURL, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", baseURL+path).Msg("domestic data request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	return body, nil
}

// DailyIndex retrieves full daily history for the market index. The source
// returns rows keyed by lowercase column labels with string-typed numbers,
// which are renamed and parsed into the canonical schema.
func (c *Client) DailyIndex(ctx context.Context, code string) (models.Series, error) {
	params := url.Values{}
	params.Set("symbol", "sh"+code)
	params.Set("scale", "240") // daily bars
	params.Set("ma", "no")
	params.Set("datalen", "1023")

	body, err := c.get(ctx, c.indexBaseURL, indexPath, params)
	if err != nil {
		return nil, err
	}

	var rows []map[string]string
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode index response: %w", err)
	}

	series, err := normalizeLabeledRows(rows)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("empty index series for %s", code)
	}
	return series, nil
}

// DailyFund retrieves forward-adjusted daily history for an exchange-traded fund
func (c *Client) DailyFund(ctx context.Context, code string) (models.Series, error) {
	return c.kline(ctx, fundSecID(code))
}

// DailyEquity retrieves forward-adjusted daily history for a listed equity
func (c *Client) DailyEquity(ctx context.Context, code string) (models.Series, error) {
	return c.kline(ctx, equitySecID(code))
}

// klineResponse is the kline endpoint envelope. Each kline entry is a
// comma-joined record in the order requested via fields2.
type klineResponse struct {
	Data *struct {
		Code   string   `json:"code"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// kline fetches daily forward-adjusted bars for a secid
func (c *Client) kline(ctx context.Context, secID string) (models.Series, error) {
	params := url.Values{}
	params.Set("secid", secID)
	params.Set("klt", "101") // daily
	params.Set("fqt", "1")   // forward-adjusted
	params.Set("fields1", "f1,f2,f3,f4,f5,f6")
	params.Set("fields2", strings.Join(klineFieldOrder, ","))
	params.Set("beg", "0")
	params.Set("end", "20500101")

	body, err := c.get(ctx, c.baseURL, klinePath, params)
	if err != nil {
		return nil, err
	}

	var resp klineResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode kline response: %w", err)
	}
	if resp.Data == nil || len(resp.Data.Klines) == 0 {
		return nil, fmt.Errorf("empty kline series for %s", secID)
	}

	return normalizeKlines(resp.Data.Klines)
}

// equitySecID maps an equity code to the exchange-prefixed secid
func equitySecID(code string) string {
	if strings.HasPrefix(code, "6") || strings.HasPrefix(code, "9") {
		return "1." + code // Shanghai
	}
	return "0." + code // Shenzhen
}

// fundSecID maps a fund code to the exchange-prefixed secid
func fundSecID(code string) string {
	if strings.HasPrefix(code, "5") {
		return "1." + code // Shanghai
	}
	return "0." + code // Shenzhen
}

// Ensure Client implements DomesticProvider
var _ interfaces.DomesticProvider = (*Client)(nil)
