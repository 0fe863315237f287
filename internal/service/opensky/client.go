package opensky

import (
	"context"
	"fmt"
	"strings"
	"time"

	"IntelPull/internal/domain/models"
	drepo "IntelPull/internal/domain/repository"
	"IntelPull/internal/service/ratelimit"
	"IntelPull/pkg/cache"
	xhttp "IntelPull/pkg/http"
	applogger "IntelPull/pkg/logger"
)

const cacheKey = "source:flights"

// Client pulls the OpenSky bulk state vector feed and keeps only aircraft
// whose ICAO24 identifier matches a recognized military prefix.
type Client struct {
	baseURL  string
	prefixes []string
	maxOut   int

	http    *xhttp.Client
	cache   cache.Service
	ttl     time.Duration
	rl      *ratelimit.Limiter
	metrics drepo.Metrics
	logger  *applogger.Logger
}

func New(baseURL string, prefixes []string, maxFlights int, timeout time.Duration) *Client {
	upper := make([]string, len(prefixes))
	for i, p := range prefixes {
		upper[i] = strings.ToUpper(p)
	}
	return &Client{
		baseURL:  baseURL,
		prefixes: upper,
		maxOut:   maxFlights,
		http:     xhttp.NewClient(xhttp.WithTimeout(timeout)),
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

// apiResponse carries heterogeneous state vectors; fields are positional.
type apiResponse struct {
	Time   int64           `json:"time"`
	States [][]interface{} `json:"states"`
}

// Fetch returns the filtered, truncated military flight picture.
func (c *Client) Fetch(ctx context.Context) *models.FlightReport {
	if c.cache != nil {
		var cached models.FlightReport
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached
		}
	}

	start := time.Now()
	report := c.fetch(ctx)
	if c.metrics != nil {
		c.metrics.RecordSourceFetch(string(models.SourceFlights), report.Error == "", time.Since(start).Seconds())
	}

	if report.Error == "" && c.cache != nil {
		_ = c.cache.Set(ctx, cacheKey, report, c.ttl)
	}
	return report
}

func (c *Client) fetch(ctx context.Context) *models.FlightReport {
	if c.rl != nil && !c.rl.Allow("opensky", 2, 0.1) {
		return c.fallback(fmt.Errorf("rate limited"))
	}

	var resp apiResponse
	err := c.http.DoJSON(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/states/all",
	}, &resp)
	if err != nil {
		return c.fallback(err)
	}

	flights := make([]models.FlightState, 0, 64)
	for _, state := range resp.States {
		f, ok := c.mapState(state)
		if !ok {
			continue
		}
		flights = append(flights, f)
	}

	count := len(flights)
	if count > c.maxOut {
		flights = flights[:c.maxOut]
	}

	return &models.FlightReport{Count: count, Flights: flights}
}

// mapState converts one positional state vector. Index layout per the
// OpenSky API: 0 icao24, 1 callsign, 2 origin country, 3 time position,
// 5 longitude, 6 latitude, 7 baro altitude, 9 velocity.
func (c *Client) mapState(state []interface{}) (models.FlightState, bool) {
	icao := stringAt(state, 0)
	if icao == "" || !c.recognized(icao) {
		return models.FlightState{}, false
	}

	f := models.FlightState{
		ICAO24:    icao,
		Callsign:  strings.TrimSpace(stringAt(state, 1)),
		Country:   stringAt(state, 2),
		Longitude: floatAt(state, 5),
		Latitude:  floatAt(state, 6),
		Altitude:  floatAt(state, 7),
		Velocity:  floatAt(state, 9),
	}
	if ts := floatAt(state, 3); ts != nil {
		f.ObservedAt = int64(*ts)
	}
	return f, true
}

func (c *Client) recognized(icao string) bool {
	u := strings.ToUpper(icao)
	for _, p := range c.prefixes {
		if strings.HasPrefix(u, p) {
			return true
		}
	}
	return false
}

func stringAt(state []interface{}, i int) string {
	if i >= len(state) {
		return ""
	}
	s, _ := state[i].(string)
	return s
}

func floatAt(state []interface{}, i int) *float64 {
	if i >= len(state) {
		return nil
	}
	f, ok := state[i].(float64)
	if !ok {
		return nil
	}
	return &f
}

func (c *Client) fallback(err error) *models.FlightReport {
	if c.logger != nil {
		c.logger.Warn("flight fetch failed", applogger.Error(err))
	}
	return &models.FlightReport{Count: 0, Flights: []models.FlightState{}, Error: err.Error()}
}
