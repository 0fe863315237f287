package opensky

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T, payload interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/states/all" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

func TestFetchFiltersByPrefix(t *testing.T) {
	srv := newTestServer(t, map[string]interface{}{
		"time": 1700000000,
		"states": [][]interface{}{
			{"ae1460", "RCH4136 ", "United States", 1700000000.0, nil, -77.0, 38.9, 8500.0, false, 230.5},
			{"abc123", "UAL12  ", "United States", 1700000000.0, nil, -80.0, 40.0, 11000.0, false, 250.0},
			{"154321", "", "Spain", nil, nil, nil, nil, nil, false, nil},
		},
	})
	defer srv.Close()

	c := New(srv.URL, []string{"AE", "15", "16"}, 50, time.Second)
	report := c.Fetch(context.Background())

	if report.Error != "" {
		t.Fatalf("unexpected error %q", report.Error)
	}
	if report.Count != 2 {
		t.Fatalf("expected 2 military flights, got %d", report.Count)
	}

	first := report.Flights[0]
	if first.ICAO24 != "ae1460" {
		t.Fatalf("unexpected icao %q", first.ICAO24)
	}
	if first.Callsign != "RCH4136" {
		t.Fatalf("callsign not trimmed: %q", first.Callsign)
	}
	if first.Longitude == nil || *first.Longitude != -77.0 {
		t.Fatalf("longitude not mapped: %v", first.Longitude)
	}
	if first.ObservedAt != 1700000000 {
		t.Fatalf("observedAt not mapped: %v", first.ObservedAt)
	}

	second := report.Flights[1]
	if second.ICAO24 != "154321" {
		t.Fatalf("unexpected icao %q", second.ICAO24)
	}
	if second.Longitude != nil || second.Velocity != nil {
		t.Fatalf("missing upstream fields must stay nil: %+v", second)
	}
}

func TestFetchTruncatesToMax(t *testing.T) {
	states := make([][]interface{}, 60)
	for i := range states {
		states[i] = []interface{}{"ae0000", "X", "US", 1.0, nil, 0.0, 0.0, 0.0, false, 0.0}
	}
	srv := newTestServer(t, map[string]interface{}{"time": 1, "states": states})
	defer srv.Close()

	c := New(srv.URL, []string{"AE"}, 50, time.Second)
	report := c.Fetch(context.Background())

	if report.Count != 60 {
		t.Fatalf("count must reflect all matches, got %d", report.Count)
	}
	if len(report.Flights) != 50 {
		t.Fatalf("flights must be truncated to 50, got %d", len(report.Flights))
	}
}

func TestFetchFallbackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, []string{"AE"}, 50, time.Second)
	report := c.Fetch(context.Background())

	if report.Error == "" {
		t.Fatalf("expected error marker")
	}
	if report.Count != 0 || len(report.Flights) != 0 {
		t.Fatalf("fallback must be empty: %+v", report)
	}
}

func TestFetchNullStates(t *testing.T) {
	srv := newTestServer(t, map[string]interface{}{"time": 1, "states": nil})
	defer srv.Close()

	c := New(srv.URL, []string{"AE"}, 50, time.Second)
	report := c.Fetch(context.Background())

	if report.Error != "" {
		t.Fatalf("null states is not an error: %q", report.Error)
	}
	if report.Count != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}
