package reddit

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"IntelPull/internal/domain/models"
	drepo "IntelPull/internal/domain/repository"
	"IntelPull/internal/service/ratelimit"
	"IntelPull/pkg/cache"
	xhttp "IntelPull/pkg/http"
	applogger "IntelPull/pkg/logger"
)

const cacheKey = "source:social"

// Client searches a fixed set of subreddits through the Reddit OAuth API.
// Token exchange uses the client-credentials grant; a failed exchange folds
// into the same error-carrying report as a failed search.
type Client struct {
	clientID   string
	secret     string
	authURL    string
	searchURL  string
	subreddits []string
	query      string
	limit      int
	userAgent  string

	http    *xhttp.Client
	cache   cache.Service
	ttl     time.Duration
	rl      *ratelimit.Limiter
	metrics drepo.Metrics
	logger  *applogger.Logger
}

func New(clientID, secret, authURL, searchURL string, subreddits []string, query string, limit int, userAgent string, timeout time.Duration) *Client {
	return &Client{
		clientID:   clientID,
		secret:     secret,
		authURL:    authURL,
		searchURL:  searchURL,
		subreddits: subreddits,
		query:      query,
		limit:      limit,
		userAgent:  userAgent,
		http:       xhttp.NewClient(xhttp.WithTimeout(timeout)),
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

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type listingChild struct {
	Data struct {
		Title       string  `json:"title"`
		Score       int     `json:"score"`
		NumComments int     `json:"num_comments"`
		Subreddit   string  `json:"subreddit"`
		CreatedUTC  float64 `json:"created_utc"`
		URL         string  `json:"url"`
	} `json:"data"`
}

type listingResponse struct {
	Data struct {
		Children []listingChild `json:"children"`
	} `json:"data"`
}

// Fetch returns the latest matching posts across the watched subreddits.
func (c *Client) Fetch(ctx context.Context) *models.SocialReport {
	if c.cache != nil {
		var cached models.SocialReport
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached
		}
	}

	start := time.Now()
	report := c.fetch(ctx)
	if c.metrics != nil {
		c.metrics.RecordSourceFetch(string(models.SourceSocial), report.Error == "", time.Since(start).Seconds())
	}

	if report.Error == "" && c.cache != nil {
		_ = c.cache.Set(ctx, cacheKey, report, c.ttl)
	}
	return report
}

func (c *Client) fetch(ctx context.Context) *models.SocialReport {
	if c.rl != nil && !c.rl.Allow("reddit", 5, 0.5) {
		return c.fallback(fmt.Errorf("rate limited"))
	}

	token, err := c.exchangeToken(ctx)
	if err != nil {
		return c.fallback(err)
	}

	var resp listingResponse
	searchPath := fmt.Sprintf("%s/r/%s/search", c.searchURL, strings.Join(c.subreddits, "+"))
	err = c.http.DoJSON(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    searchPath,
		Bearer: token,
		Headers: map[string]string{
			"User-Agent": c.userAgent,
		},
		QueryParams: url.Values{
			"q":           {c.query},
			"sort":        {"new"},
			"limit":       {strconv.Itoa(c.limit)},
			"restrict_sr": {"true"},
		},
	}, &resp)
	if err != nil {
		return c.fallback(err)
	}

	posts := make([]models.SocialPost, 0, len(resp.Data.Children))
	for _, child := range resp.Data.Children {
		if child.Data.Title == "" {
			continue
		}
		posts = append(posts, models.SocialPost{
			Title:     child.Data.Title,
			Score:     child.Data.Score,
			Comments:  child.Data.NumComments,
			Subreddit: child.Data.Subreddit,
			CreatedAt: int64(child.Data.CreatedUTC),
			URL:       child.Data.URL,
		})
	}

	return &models.SocialReport{Posts: posts}
}

func (c *Client) exchangeToken(ctx context.Context) (string, error) {
	var tok tokenResponse
	err := c.http.DoJSON(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.authURL,
		Basic:  &xhttp.BasicAuth{User: c.clientID, Password: c.secret},
		Headers: map[string]string{
			"User-Agent": c.userAgent,
		},
		Body: url.Values{"grant_type": {"client_credentials"}},
	}, &tok)
	if err != nil {
		return "", fmt.Errorf("reddit token exchange: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("reddit token exchange: empty access token")
	}
	return tok.AccessToken, nil
}

func (c *Client) fallback(err error) *models.SocialReport {
	if c.logger != nil {
		c.logger.Warn("social fetch failed", applogger.Error(err))
	}
	return &models.SocialReport{Posts: []models.SocialPost{}, Error: err.Error()}
}
