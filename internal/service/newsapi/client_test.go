package newsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"IntelPull/pkg/cache"
)

func newMemCache() cache.Service {
	return cache.NewMemoryCache()
}

func TestFetchMapsArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/everything" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("missing api key header, got %q", got)
		}
		q := r.URL.Query()
		if q.Get("sortBy") != "publishedAt" || q.Get("language") != "en" || q.Get("pageSize") != "50" {
			t.Errorf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{"title": "Troops deployed", "publishedAt": "2026-08-27T10:00:00Z", "url": "https://example.com/a", "source": {"name": "Reuters"}},
				{"title": "", "publishedAt": "2026-08-27T09:00:00Z", "source": {"name": "AP"}},
				{"title": "Strike reported", "publishedAt": "2026-08-27T08:00:00Z", "source": {"name": "BBC"}}
			]
		}`))
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, "military OR strike", 50, time.Second)
	report := c.Fetch(context.Background())

	if report.Error != "" {
		t.Fatalf("unexpected error %q", report.Error)
	}
	if len(report.Articles) != 2 {
		t.Fatalf("empty-title articles must be dropped, got %d", len(report.Articles))
	}
	if report.Articles[0].Title != "Troops deployed" || report.Articles[0].Source != "Reuters" {
		t.Fatalf("article not mapped: %+v", report.Articles[0])
	}
	if report.Articles[0].PublishedAt.IsZero() {
		t.Fatalf("publish time not parsed")
	}
}

func TestFetchFallbackOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"error"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New("bad-key", srv.URL, "q", 50, time.Second)
	report := c.Fetch(context.Background())

	if report.Error == "" {
		t.Fatalf("expected error marker")
	}
	if report.Articles == nil || len(report.Articles) != 0 {
		t.Fatalf("fallback must carry an empty article list: %+v", report.Articles)
	}
}

func TestFetchFallbackOnAPIStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "error", "articles": []}`))
	}))
	defer srv.Close()

	c := New("key", srv.URL, "q", 50, time.Second)
	report := c.Fetch(context.Background())

	if report.Error == "" {
		t.Fatalf("non-ok API status must become a fallback")
	}
}

func TestFetchUsesCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","articles":[{"title":"One","publishedAt":"2026-08-27T10:00:00Z","source":{"name":"X"}}]}`))
	}))
	defer srv.Close()

	c := New("key", srv.URL, "q", 50, time.Second).
		WithCache(newMemCache(), time.Minute)

	first := c.Fetch(context.Background())
	second := c.Fetch(context.Background())

	if calls != 1 {
		t.Fatalf("expected one upstream call, got %d", calls)
	}
	if len(first.Articles) != 1 || len(second.Articles) != 1 {
		t.Fatalf("cached report differs: %+v vs %+v", first, second)
	}
}
