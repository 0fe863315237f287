package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"IntelPull/internal/domain/models"
	drepo "IntelPull/internal/domain/repository"
	"IntelPull/internal/service/ratelimit"
	"IntelPull/pkg/cache"
	xhttp "IntelPull/pkg/http"
	applogger "IntelPull/pkg/logger"
)

// Client fetches per-symbol quotes from the Finnhub REST API. A failing
// symbol yields a Quote carrying its own error; the batch never aborts.
type Client struct {
	apiKey  string
	baseURL string
	symbols []string

	http    *xhttp.Client
	cache   cache.Service
	ttl     time.Duration
	rl      *ratelimit.Limiter
	metrics drepo.Metrics
	logger  *applogger.Logger
	live    *Stream
}

func New(apiKey, baseURL string, symbols []string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		symbols: symbols,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (c *Client) WithCache(svc cache.Service, ttl time.Duration) *Client {
	c.cache = svc
	c.ttl = ttl
	return c
}

func (c *Client) WithRateLimit(rl *ratelimit.Limiter) *Client {
	c.rl = rl
	return c
}

func (c *Client) WithMetrics(m drepo.Metrics) *Client {
	c.metrics = m
	return c
}

func (c *Client) WithLogger(l *applogger.Logger) *Client {
	c.logger = l
	return c
}

// WithStream attaches a live trade stream whose last prices override stale
// REST observations.
func (c *Client) WithStream(s *Stream) *Client {
	c.live = s
	return c
}

// Symbols returns the fixed watch-list.
func (c *Client) Symbols() []string {
	return c.symbols
}

type apiQuote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Timestamp     int64   `json:"t"`
}

// Quote fetches one symbol's quote.
func (c *Client) Quote(ctx context.Context, symbol string) models.Quote {
	key := cache.Key("source:quote", symbol)
	if c.cache != nil {
		var cached models.Quote
		if err := c.cache.Get(ctx, key, &cached); err == nil {
			return cached
		}
	}

	start := time.Now()
	q := c.fetch(ctx, symbol)
	if c.metrics != nil {
		c.metrics.RecordSourceFetch(string(models.SourceStocks), q.Error == "", time.Since(start).Seconds())
		if q.Error == "" {
			c.metrics.RecordLastPrice(symbol, q.Price)
		}
	}

	if q.Error == "" && c.cache != nil {
		_ = c.cache.Set(ctx, key, q, c.ttl)
	}
	return q
}

func (c *Client) fetch(ctx context.Context, symbol string) models.Quote {
	if c.rl != nil && !c.rl.Allow("finnhub", 30, 1) {
		return c.fallback(symbol, fmt.Errorf("rate limited"))
	}

	var resp apiQuote
	err := c.http.DoJSON(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/quote",
		QueryParams: url.Values{
			"symbol": {symbol},
			"token":  {c.apiKey},
		},
	}, &resp)
	if err != nil {
		return c.fallback(symbol, err)
	}

	q := models.Quote{
		Symbol:        symbol,
		Price:         resp.Current,
		Change:        resp.Change,
		ChangePercent: resp.ChangePercent,
		High:          resp.High,
		Low:           resp.Low,
		ObservedAt:    time.Now().UTC(),
	}
	if resp.Timestamp > 0 {
		q.ObservedAt = time.Unix(resp.Timestamp, 0).UTC()
	}

	// Prefer a fresher price from the live stream when available.
	if c.live != nil {
		if price, at, ok := c.live.LastPrice(symbol); ok && at.After(q.ObservedAt) {
			q.Price = price
			q.ObservedAt = at
		}
	}

	return q
}

func (c *Client) fallback(symbol string, err error) models.Quote {
	if c.logger != nil {
		c.logger.Warn("quote fetch failed", applogger.String("symbol", symbol), applogger.Error(err))
	}
	return models.Quote{Symbol: symbol, Error: err.Error()}
}
