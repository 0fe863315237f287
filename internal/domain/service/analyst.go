package service

import (
	"context"
	"encoding/json"
)

// AssessmentRequest describes one generative-analysis call.
type AssessmentRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
}

// Analyst invokes the external generative-analysis endpoint and returns the
// raw structured reply. Parsing into a typed result is the caller's concern.
type Analyst interface {
	Assess(ctx context.Context, req AssessmentRequest) (json.RawMessage, error)
}
