package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"IntelPull/internal/domain/models"
	dservice "IntelPull/internal/domain/service"
	internalrepo "IntelPull/internal/repository"
	"IntelPull/internal/usecase"
	xhttp "IntelPull/pkg/http"
)

type stubNews struct{ report *models.NewsReport }

func (s stubNews) Fetch(context.Context) *models.NewsReport { return s.report }

type stubQuotes struct{}

func (stubQuotes) Symbols() []string { return []string{"LMT"} }
func (stubQuotes) Quote(_ context.Context, symbol string) models.Quote {
	return models.Quote{Symbol: symbol, Price: 450, ChangePercent: 1.0}
}

type stubFlights struct{}

func (stubFlights) Fetch(context.Context) *models.FlightReport {
	return &models.FlightReport{Count: 0, Flights: []models.FlightState{}}
}

type stubVessels struct{}

func (stubVessels) Fetch(context.Context) *models.VesselReport {
	return &models.VesselReport{Note: "stub", Vessels: []string{}}
}

type stubSocial struct{}

func (stubSocial) Fetch(context.Context) *models.SocialReport {
	return &models.SocialReport{Posts: []models.SocialPost{}}
}

type stubAnalyst struct {
	raw json.RawMessage
	err error
}

func (s stubAnalyst) Assess(context.Context, dservice.AssessmentRequest) (json.RawMessage, error) {
	return s.raw, s.err
}

func newTestEcho(analyst dservice.Analyst) *echo.Echo {
	news := stubNews{report: &models.NewsReport{Articles: []models.Article{
		{Title: "Troops deployed"},
		{Title: "Quiet day"},
	}}}
	agg := usecase.NewAggregatorUsecase(news, stubQuotes{}, stubFlights{}, stubVessels{}, stubSocial{}, nil)
	analysis := usecase.NewAnalysisUsecase(agg, analyst, internalrepo.NewStateStore(), "gpt-4o-mini", "gpt-4o", nil)
	score := usecase.NewScoreUsecase(agg, nil)

	h := NewHandler(analysis, score, news, stubQuotes{}, stubFlights{}, stubVessels{}, stubSocial{})
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func doRequest(e *echo.Echo, path string) (*httptest.ResponseRecorder, xhttp.APIResponse) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp xhttp.APIResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestRootListsEndpoints(t *testing.T) {
	e := newTestEcho(stubAnalyst{})

	rec, resp := doRequest(e, "/")
	if rec.Code != http.StatusOK || resp.Status != http.StatusOK {
		t.Fatalf("unexpected status %d/%d", rec.Code, resp.Status)
	}
	data, _ := resp.Data.(map[string]interface{})
	if data["status"] != "online" {
		t.Fatalf("unexpected root payload %v", data)
	}
}

func TestAnalysisEmptyState(t *testing.T) {
	e := newTestEcho(stubAnalyst{})

	_, resp := doRequest(e, "/api/analysis")
	data, _ := resp.Data.(map[string]interface{})
	if data["mini"] != nil || data["deep"] != nil {
		t.Fatalf("expected null slots before any run: %v", data)
	}
}

func TestScoreEndpoint(t *testing.T) {
	e := newTestEcho(stubAnalyst{})

	_, resp := doRequest(e, "/api/score")
	data, _ := resp.Data.(map[string]interface{})
	// 50 baseline + 1 keyword hit * 2 + 1.0 avg change * 10
	if data["score"] != 62.0 {
		t.Fatalf("unexpected score %v", data["score"])
	}
}

func TestStockValidation(t *testing.T) {
	e := newTestEcho(stubAnalyst{})

	_, resp := doRequest(e, "/api/stock/NOT-A-SYMBOL")
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("expected validation failure, got %d", resp.Status)
	}

	_, resp = doRequest(e, "/api/stock/LMT")
	if resp.Status != http.StatusOK {
		t.Fatalf("expected success, got %d", resp.Status)
	}
	data, _ := resp.Data.(map[string]interface{})
	if data["symbol"] != "LMT" {
		t.Fatalf("unexpected quote %v", data)
	}
}

func TestRunMiniReturnsResult(t *testing.T) {
	e := newTestEcho(stubAnalyst{raw: json.RawMessage(`{"threatLevel": 55, "regions": [], "probability": 20, "indicators": [], "summary": "ok"}`)})

	rec, resp := doRequest(e, "/api/run-mini")
	if rec.Code != http.StatusOK || resp.Status != http.StatusOK {
		t.Fatalf("unexpected status %d/%d: %s", rec.Code, resp.Status, rec.Body.String())
	}
	data, _ := resp.Data.(map[string]interface{})
	if data["threatLevel"] != 55.0 || data["tier"] != "mini" {
		t.Fatalf("unexpected analysis payload %v", data)
	}

	// The committed result must now be visible on the read path.
	_, resp = doRequest(e, "/api/analysis")
	state, _ := resp.Data.(map[string]interface{})
	if state["mini"] == nil {
		t.Fatalf("mini slot empty after manual run")
	}
}

func TestRunMiniFailureIsTypedError(t *testing.T) {
	e := newTestEcho(stubAnalyst{err: context.DeadlineExceeded})

	_, resp := doRequest(e, "/api/run-mini")
	if resp.Status != http.StatusBadGateway {
		t.Fatalf("expected 502 payload status, got %d", resp.Status)
	}
}

func TestNewsLimit(t *testing.T) {
	e := newTestEcho(stubAnalyst{})

	_, resp := doRequest(e, "/api/news?limit=1")
	data, _ := resp.Data.(map[string]interface{})
	articles, _ := data["articles"].([]interface{})
	if len(articles) != 1 {
		t.Fatalf("expected limit applied, got %d articles", len(articles))
	}

	_, resp = doRequest(e, "/api/news?limit=0")
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("limit below minimum must fail validation, got %d", resp.Status)
	}
}
