package newsapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"IntelPull/internal/domain/models"
	drepo "IntelPull/internal/domain/repository"
	"IntelPull/internal/service/ratelimit"
	"IntelPull/pkg/cache"
	xhttp "IntelPull/pkg/http"
	applogger "IntelPull/pkg/logger"
	"IntelPull/pkg/util"
)

const cacheKey = "source:news"

// Client fetches military/geopolitical headlines from NewsAPI. Any failure
// collapses into a NewsReport carrying its own error; callers never see one.
type Client struct {
	apiKey   string
	baseURL  string
	query    string
	pageSize int

	http    *xhttp.Client
	cache   cache.Service
	ttl     time.Duration
	rl      *ratelimit.Limiter
	metrics drepo.Metrics
	logger  *applogger.Logger
}

func New(apiKey, baseURL, query string, pageSize int, timeout time.Duration) *Client {
	return &Client{
		apiKey:   apiKey,
		baseURL:  baseURL,
		query:    query,
		pageSize: pageSize,
		http:     xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// WithCache enables short-TTL payload caching.
func (c *Client) WithCache(svc cache.Service, ttl time.Duration) *Client {
	c.cache = svc
	c.ttl = ttl
	return c
}

// WithRateLimit guards the outbound call with a token bucket.
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

type apiArticle struct {
	Title       string `json:"title"`
	PublishedAt string `json:"publishedAt"`
	URL         string `json:"url"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

type apiResponse struct {
	Status   string       `json:"status"`
	Articles []apiArticle `json:"articles"`
}

// Fetch returns the latest matching articles, newest first.
func (c *Client) Fetch(ctx context.Context) *models.NewsReport {
	if c.cache != nil {
		var cached models.NewsReport
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached
		}
	}

	start := time.Now()
	report := c.fetch(ctx)
	if c.metrics != nil {
		c.metrics.RecordSourceFetch(string(models.SourceNews), report.Error == "", time.Since(start).Seconds())
	}

	if report.Error == "" && c.cache != nil {
		_ = c.cache.Set(ctx, cacheKey, report, c.ttl)
	}
	return report
}

func (c *Client) fetch(ctx context.Context) *models.NewsReport {
	if c.rl != nil && !c.rl.Allow("newsapi", 5, 0.5) {
		return c.fallback(fmt.Errorf("rate limited"))
	}

	var resp apiResponse
	err := c.http.DoJSON(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/everything",
		Headers: map[string]string{
			"X-Api-Key": c.apiKey,
		},
		QueryParams: url.Values{
			"q":        {c.query},
			"sortBy":   {"publishedAt"},
			"language": {"en"},
			"pageSize": {strconv.Itoa(c.pageSize)},
		},
	}, &resp)
	if err != nil {
		return c.fallback(err)
	}
	if resp.Status != "" && resp.Status != "ok" {
		return c.fallback(fmt.Errorf("newsapi status %q", resp.Status))
	}

	articles := make([]models.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.Title == "" {
			continue
		}
		articles = append(articles, models.Article{
			Title:       a.Title,
			Source:      a.Source.Name,
			PublishedAt: util.ParseTimeDefault(a.PublishedAt, time.Time{}),
			URL:         a.URL,
		})
	}

	return &models.NewsReport{Articles: articles}
}

func (c *Client) fallback(err error) *models.NewsReport {
	if c.logger != nil {
		c.logger.Warn("news fetch failed", applogger.Error(err))
	}
	return &models.NewsReport{Articles: []models.Article{}, Error: err.Error()}
}
