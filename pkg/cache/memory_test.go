package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type payload struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	in := payload{Name: "mini", Score: 72.5}
	if err := mc.Set(ctx, "k", in, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out payload
	if err := mc.Get(ctx, "k", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var out payload
	err := mc.Get(context.Background(), "missing", &out)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", payload{Name: "x"}, 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	var out payload
	if err := mc.Get(ctx, "k", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestMemoryCacheEvictsLRU(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", payload{Name: "a"}, time.Minute)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "b", payload{Name: "b"}, time.Minute)
	time.Sleep(time.Millisecond)

	// Touch "a" so "b" becomes the eviction candidate.
	var out payload
	_ = mc.Get(ctx, "a", &out)
	time.Sleep(time.Millisecond)

	_ = mc.Set(ctx, "c", payload{Name: "c"}, time.Minute)

	if err := mc.Get(ctx, "b", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected b evicted, got %v", err)
	}
	if err := mc.Get(ctx, "a", &out); err != nil {
		t.Fatalf("a should survive: %v", err)
	}
}

func TestKeyComposition(t *testing.T) {
	if got := Key("source:quote", "LMT"); got != "source:quote:LMT" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := Key("source:news"); got != "source:news" {
		t.Fatalf("unexpected key %q", got)
	}
}
