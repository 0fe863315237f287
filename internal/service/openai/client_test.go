package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dservice "IntelPull/internal/domain/service"
)

func TestAssessSendsJSONModeRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("missing bearer, got %q", got)
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["model"] != "gpt-4o-mini" {
			t.Errorf("wrong model %v", body["model"])
		}
		if body["temperature"] != 0.7 {
			t.Errorf("wrong temperature %v", body["temperature"])
		}
		rf, _ := body["response_format"].(map[string]interface{})
		if rf["type"] != "json_object" {
			t.Errorf("expected json_object response format, got %v", rf)
		}
		msgs, _ := body["messages"].([]interface{})
		if len(msgs) != 2 {
			t.Errorf("expected system+user messages, got %d", len(msgs))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "{\"threatLevel\": 42}"}}]}`))
	}))
	defer srv.Close()

	c := New("sk-test", srv.URL, 1, time.Second)
	raw, err := c.Assess(context.Background(), dservice.AssessmentRequest{
		Model:       "gpt-4o-mini",
		System:      "analyst",
		Prompt:      "assess",
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed struct {
		ThreatLevel float64 `json:"threatLevel"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("reply not parseable: %v", err)
	}
	if parsed.ThreatLevel != 42 {
		t.Fatalf("unexpected reply %s", raw)
	}
}

func TestAssessRetriesTransientFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "{}"}}]}`))
	}))
	defer srv.Close()

	c := New("sk-test", srv.URL, 3, time.Second)
	if _, err := c.Assess(context.Background(), dservice.AssessmentRequest{Model: "m"}); err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestAssessExhaustsAttempts(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New("sk-test", srv.URL, 2, time.Second)
	if _, err := c.Assess(context.Background(), dservice.AssessmentRequest{Model: "m"}); err == nil {
		t.Fatalf("expected error after exhausting attempts")
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestAssessRejectsNonJSONContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "sorry, I cannot"}}]}`))
	}))
	defer srv.Close()

	c := New("sk-test", srv.URL, 1, time.Second)
	if _, err := c.Assess(context.Background(), dservice.AssessmentRequest{Model: "m"}); err == nil {
		t.Fatalf("expected error for non-JSON content")
	}
}

func TestAssessRejectsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := New("sk-test", srv.URL, 1, time.Second)
	if _, err := c.Assess(context.Background(), dservice.AssessmentRequest{Model: "m"}); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}
