package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	dservice "IntelPull/internal/domain/service"
	xhttp "IntelPull/pkg/http"
	applogger "IntelPull/pkg/logger"
)

// Client talks to the OpenAI chat completions API in JSON mode. Replies are
// returned as raw JSON for the caller to shape.
type Client struct {
	apiKey      string
	baseURL     string
	maxAttempts int

	http   *xhttp.Client
	logger *applogger.Logger
}

var _ dservice.Analyst = (*Client)(nil)

func New(apiKey, baseURL string, maxAttempts int, timeout time.Duration) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		apiKey:      apiKey,
		baseURL:     baseURL,
		maxAttempts: maxAttempts,
		http:        xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (c *Client) WithLogger(l *applogger.Logger) *Client {
	c.logger = l
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Assess sends one system+user exchange and returns the model's JSON reply.
// Transient failures are retried with linear backoff up to maxAttempts.
func (c *Client) Assess(ctx context.Context, req dservice.AssessmentRequest) (json.RawMessage, error) {
	body := chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
	}
	body.ResponseFormat.Type = "json_object"

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * time.Second):
			}
		}

		raw, err := c.complete(ctx, body)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if c.logger != nil {
			c.logger.Warn("assessment attempt failed",
				applogger.String("model", req.Model),
				applogger.Int("attempt", attempt),
				applogger.Error(err))
		}
	}
	return nil, fmt.Errorf("assess with %s: %w", req.Model, lastErr)
}

func (c *Client) complete(ctx context.Context, body chatRequest) (json.RawMessage, error) {
	var resp chatResponse
	err := c.http.DoJSON(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + "/chat/completions",
		Bearer: c.apiKey,
		Body:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty choices in completion response")
	}

	content := resp.Choices[0].Message.Content
	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("completion content is not valid JSON")
	}
	return json.RawMessage(content), nil
}
