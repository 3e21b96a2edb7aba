// Package feed reads live sportsbook quotes from a remote odds feed.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/smartslip/internal/config"
	"github.com/yourusername/smartslip/internal/logger"
	"github.com/yourusername/smartslip/internal/models"
	"github.com/yourusername/smartslip/internal/odds"
)

const (
	defaultTimeout    = 10 * time.Second
	circuitBreakerMax = 5
	circuitCooldown   = 30 * time.Second
	apiKeyHeader      = "X-API-Key"
)

// quotesResponse is the feed's odds payload for one market
type quotesResponse struct {
	Quotes []models.OddsQuote `json:"quotes"`
}

// Client is a repository.QuoteReader backed by the remote odds feed
type Client struct {
	baseURL *url.URL
	apiKey  string
	client  *retryablehttp.Client
	logger  *logrus.Entry

	mu                sync.Mutex
	consecutiveErrors int
	lastError         error
	openedAt          time.Time
}

// NewClient creates a feed client from configuration
func NewClient(cfg config.FeedConfig, log *logrus.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid feed base url %q", cfg.BaseURL)
	}
	if log == nil {
		log = logger.Discard()
	}
	entry := log.WithField("component", "odds_feed")

	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = timeout
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.CheckRetry = retryPolicy
	retryClient.Logger = entry

	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		client:  retryClient,
		logger:  entry,
	}, nil
}

// QueryQuotes fetches a market's quotes. Quotes missing a decimal price are
// normalized from their native price, and quotes with an unreadable price
// are dropped.
func (c *Client) QueryQuotes(ctx context.Context, gameKey string, market models.MarketType, book string, since *time.Time) ([]models.OddsQuote, error) {
	if err := c.checkCircuit(); err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.quotesURL(gameKey, market, book, since), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.recordFailure(err)
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.recordSuccess()
		return nil, nil
	case resp.StatusCode >= 500:
		err := fmt.Errorf("feed returned status %d", resp.StatusCode)
		c.recordFailure(err)
		return nil, err
	case resp.StatusCode != http.StatusOK:
		c.recordSuccess()
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}
	c.recordSuccess()

	var payload quotesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}

	quotes := make([]models.OddsQuote, 0, len(payload.Quotes))
	for _, q := range payload.Quotes {
		q.GameKey = gameKey
		if q.DecimalOdds <= 1 {
			dec, format, err := normalizePrice(q)
			if err != nil {
				c.logger.WithFields(logrus.Fields{
					"game_key":   gameKey,
					"sportsbook": q.Sportsbook,
					"price":      q.Price,
				}).WithError(err).Debug("Dropping quote with unreadable price")
				continue
			}
			q.DecimalOdds = dec
			q.Format = format
		}
		quotes = append(quotes, q)
	}

	return quotes, nil
}

// Close closes any resources held by the client
func (c *Client) Close() {
	c.client.HTTPClient.CloseIdleConnections()
}

func (c *Client) quotesURL(gameKey string, market models.MarketType, book string, since *time.Time) string {
	u := c.baseURL.JoinPath("v1", "games", gameKey, "odds")
	q := u.Query()
	q.Set("market", string(market))
	if book != "" {
		q.Set("book", book)
	}
	if since != nil {
		q.Set("since", since.UTC().Format(time.RFC3339))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) checkCircuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consecutiveErrors < circuitBreakerMax {
		return nil
	}
	// Half-open: let one request through once the cooldown has passed.
	if time.Since(c.openedAt) >= circuitCooldown {
		c.consecutiveErrors = circuitBreakerMax - 1
		return nil
	}
	return fmt.Errorf("feed circuit breaker open: %w", c.lastError)
}

func (c *Client) recordFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveErrors++
	c.lastError = err
	if c.consecutiveErrors == circuitBreakerMax {
		c.openedAt = time.Now()
		c.logger.WithError(err).Errorf("Circuit breaker opened after %d consecutive errors", c.consecutiveErrors)
	}
}

func (c *Client) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveErrors = 0
	c.lastError = nil
}

func normalizePrice(q models.OddsQuote) (float64, models.OddsFormat, error) {
	if q.Format != "" {
		dec, err := odds.ToDecimal(q.Price, q.Format)
		return dec, q.Format, err
	}
	return odds.ParsePrice(q.Price)
}

// retryPolicy retries network errors, 429 and 5xx responses
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return true, nil
	}
	return false, nil
}
