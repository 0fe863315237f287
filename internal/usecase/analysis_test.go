package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"IntelPull/internal/domain/models"
	dservice "IntelPull/internal/domain/service"
	internalrepo "IntelPull/internal/repository"
)

type fakeAnalyst struct {
	mu       sync.Mutex
	requests []dservice.AssessmentRequest
	fn       func(req dservice.AssessmentRequest) (json.RawMessage, error)
}

func (f *fakeAnalyst) Assess(_ context.Context, req dservice.AssessmentRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.fn(req)
}

func miniReply(threat float64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"threatLevel": %v, "regions": [{"name": "Eastern Europe", "score": 70}], "probability": 35, "indicators": ["troop movement"], "summary": "elevated"}`,
		threat))
}

func newTestAnalysis(analyst dservice.Analyst) (*AnalysisUsecase, *internalrepo.StateStore) {
	agg, _ := newTestAggregator()
	store := internalrepo.NewStateStore()
	u := NewAnalysisUsecase(agg, analyst, store, "gpt-4o-mini", "gpt-4o", nil)
	return u, store
}

func TestRunMiniCommitsResult(t *testing.T) {
	analyst := &fakeAnalyst{fn: func(dservice.AssessmentRequest) (json.RawMessage, error) {
		return miniReply(72), nil
	}}
	u, store := newTestAnalysis(analyst)

	res, err := u.RunMini(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Tier != models.TierMini || res.Model != "gpt-4o-mini" {
		t.Fatalf("result not stamped: %+v", res)
	}
	if res.ThreatLevel != 72 {
		t.Fatalf("unexpected threat level %v", res.ThreatLevel)
	}
	if res.ProducedAt.IsZero() {
		t.Fatalf("expected ProducedAt to be stamped")
	}

	state := store.Read()
	if state.Mini == nil || state.LastMiniRun == nil {
		t.Fatalf("mini slot not committed: %+v", state)
	}
	if state.Deep != nil || state.LastDeepRun != nil {
		t.Fatalf("deep slot must stay untouched: %+v", state)
	}
}

func TestMiniRequestShape(t *testing.T) {
	analyst := &fakeAnalyst{fn: func(dservice.AssessmentRequest) (json.RawMessage, error) {
		return miniReply(50), nil
	}}
	u, _ := newTestAnalysis(analyst)

	if _, err := u.RunMini(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := analyst.requests[0]
	if req.Model != "gpt-4o-mini" {
		t.Fatalf("wrong model %q", req.Model)
	}
	if req.Temperature != 0.7 {
		t.Fatalf("wrong temperature %v", req.Temperature)
	}
	if req.System == "" {
		t.Fatalf("expected system framing")
	}
	for _, section := range []string{"NEWS HEADLINES:", "DEFENSE CONTRACTOR STOCKS:", "MILITARY FLIGHT ACTIVITY:"} {
		if !strings.Contains(req.Prompt, section) {
			t.Fatalf("prompt missing section %q", section)
		}
	}
	if strings.Contains(req.Prompt, "NAVAL MOVEMENTS:") {
		t.Fatalf("mini prompt must not include deep-only sources")
	}
}

func TestDeepRequestShape(t *testing.T) {
	analyst := &fakeAnalyst{fn: func(dservice.AssessmentRequest) (json.RawMessage, error) {
		return json.RawMessage(`{"threatLevel": 60, "confidenceInterval": "55-65", "regions": [], "probabilities": {"7day": 5, "30day": 15, "90day": 30}, "indicators": [], "historicalContext": "none", "scenarios": [], "executiveSummary": "calm", "monitoringPriorities": []}`), nil
	}}
	u, store := newTestAnalysis(analyst)

	res, err := u.RunDeep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := analyst.requests[0]
	if req.Model != "gpt-4o" {
		t.Fatalf("wrong model %q", req.Model)
	}
	if req.Temperature != 0.5 {
		t.Fatalf("wrong temperature %v", req.Temperature)
	}
	for _, section := range []string{"NAVAL MOVEMENTS:", "SOCIAL INTELLIGENCE (REDDIT):"} {
		if !strings.Contains(req.Prompt, section) {
			t.Fatalf("deep prompt missing section %q", section)
		}
	}

	if res.Probabilities == nil || res.Probabilities.Days30 != 15 {
		t.Fatalf("horizon probabilities not parsed: %+v", res.Probabilities)
	}
	if store.Read().Deep == nil {
		t.Fatalf("deep slot not committed")
	}
}

func TestMiniPromptCapsArticles(t *testing.T) {
	articles := make([]models.Article, 25)
	for i := range articles {
		articles[i] = models.Article{Title: fmt.Sprintf("headline-%02d", i)}
	}
	agg := NewAggregatorUsecase(
		&fakeNews{report: &models.NewsReport{Articles: articles}},
		&fakeQuotes{symbols: []string{"LMT"}},
		&fakeFlights{report: &models.FlightReport{Flights: []models.FlightState{}}},
		fakeVessels{},
		&fakeSocial{report: &models.SocialReport{}},
		nil,
	)
	analyst := &fakeAnalyst{fn: func(dservice.AssessmentRequest) (json.RawMessage, error) {
		return miniReply(50), nil
	}}
	u := NewAnalysisUsecase(agg, analyst, internalrepo.NewStateStore(), "gpt-4o-mini", "gpt-4o", nil)

	if _, err := u.RunMini(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := analyst.requests[0].Prompt
	if !strings.Contains(prompt, "headline-19") {
		t.Fatalf("expected 20th article in prompt")
	}
	if strings.Contains(prompt, "headline-20") {
		t.Fatalf("articles beyond the cap must be dropped")
	}
}

func TestFailedRunLeavesStateUntouched(t *testing.T) {
	calls := 0
	analyst := &fakeAnalyst{fn: func(dservice.AssessmentRequest) (json.RawMessage, error) {
		calls++
		if calls == 1 {
			return miniReply(66), nil
		}
		return nil, fmt.Errorf("model unavailable")
	}}
	u, store := newTestAnalysis(analyst)

	if _, err := u.RunMini(context.Background()); err != nil {
		t.Fatalf("seed run failed: %v", err)
	}
	before, err := json.Marshal(store.Read())
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}

	if _, err := u.RunMini(context.Background()); err == nil {
		t.Fatalf("expected failing run to return an error")
	}

	after, err := json.Marshal(store.Read())
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("failed run mutated state:\nbefore %s\nafter  %s", before, after)
	}
}

func TestMalformedReplyIsAnError(t *testing.T) {
	analyst := &fakeAnalyst{fn: func(dservice.AssessmentRequest) (json.RawMessage, error) {
		return json.RawMessage(`[1, 2, 3]`), nil
	}}
	u, store := newTestAnalysis(analyst)

	if _, err := u.RunMini(context.Background()); err == nil {
		t.Fatalf("expected parse error")
	}
	if store.Read().Mini != nil {
		t.Fatalf("malformed reply must not be committed")
	}
}

func TestConcurrentRunsSingleWinner(t *testing.T) {
	var n int64
	var mu sync.Mutex
	analyst := &fakeAnalyst{fn: func(dservice.AssessmentRequest) (json.RawMessage, error) {
		mu.Lock()
		n++
		level := float64(n)
		mu.Unlock()
		return miniReply(level), nil
	}}
	u, store := newTestAnalysis(analyst)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = u.RunMini(context.Background())
		}()
	}
	wg.Wait()

	final := store.Read().Mini
	if final == nil {
		t.Fatalf("expected a committed result")
	}
	if final.ThreatLevel < 1 || final.ThreatLevel > 8 {
		t.Fatalf("final state is not one of the produced results: %+v", final)
	}
	if len(final.Regions) != 1 || final.Regions[0].Name != "Eastern Europe" {
		t.Fatalf("final state mixes fields: %+v", final)
	}
}
