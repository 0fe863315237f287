package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newRedditServer(t *testing.T, tokenStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("token exchange must be POST, got %s", r.Method)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "cid" || pass != "secret" {
			t.Errorf("missing basic auth: %q %q", user, pass)
		}
		if err := r.ParseForm(); err == nil {
			if r.PostForm.Get("grant_type") != "client_credentials" {
				t.Errorf("wrong grant type %q", r.PostForm.Get("grant_type"))
			}
		}
		if tokenStatus != http.StatusOK {
			http.Error(w, "denied", tokenStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "tok-123", "token_type": "bearer", "expires_in": 3600}`))
	})
	mux.HandleFunc("/r/worldnews+geopolitics+military/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("missing bearer token, got %q", got)
		}
		q := r.URL.Query()
		if q.Get("sort") != "new" || q.Get("limit") != "25" {
			t.Errorf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"children": [
			{"data": {"title": "Deployment thread", "score": 120, "num_comments": 44, "subreddit": "worldnews", "created_utc": 1700000000.0, "url": "https://reddit.com/x"}},
			{"data": {"title": "", "score": 1, "num_comments": 0, "subreddit": "military", "created_utc": 1700000001.0}}
		]}}`))
	})
	return httptest.NewServer(mux)
}

func newTestClient(srv *httptest.Server) *Client {
	return New(
		"cid", "secret",
		srv.URL+"/api/v1/access_token",
		srv.URL,
		[]string{"worldnews", "geopolitics", "military"},
		"military OR troops",
		25,
		"intelpull-test/1.0",
		time.Second,
	)
}

func TestFetchMapsPosts(t *testing.T) {
	srv := newRedditServer(t, http.StatusOK)
	defer srv.Close()

	report := newTestClient(srv).Fetch(context.Background())
	if report.Error != "" {
		t.Fatalf("unexpected error %q", report.Error)
	}
	if len(report.Posts) != 1 {
		t.Fatalf("empty-title posts must be dropped, got %d", len(report.Posts))
	}

	p := report.Posts[0]
	if p.Title != "Deployment thread" || p.Score != 120 || p.Comments != 44 {
		t.Fatalf("post not mapped: %+v", p)
	}
	if p.Subreddit != "worldnews" || p.CreatedAt != 1700000000 {
		t.Fatalf("post metadata wrong: %+v", p)
	}
}

func TestFetchTokenFailureIsFallback(t *testing.T) {
	srv := newRedditServer(t, http.StatusUnauthorized)
	defer srv.Close()

	report := newTestClient(srv).Fetch(context.Background())
	if report.Error == "" {
		t.Fatalf("token failure must fold into the report error")
	}
	if report.Posts == nil || len(report.Posts) != 0 {
		t.Fatalf("fallback must carry an empty post list: %+v", report.Posts)
	}
}

func TestFetchEmptyTokenIsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": ""}`))
	}))
	defer srv.Close()

	report := newTestClient(srv).Fetch(context.Background())
	if report.Error == "" {
		t.Fatalf("empty access token must be a fallback")
	}
}
