package usecase

import (
	"testing"
	"time"
)

func TestDecideMarketHours(t *testing.T) {
	d := Decide(10, 0, time.Tuesday)
	if !d.RunMini || !d.RunDeep {
		t.Fatalf("expected both tiers on the hour, got %+v", d)
	}

	d = Decide(10, 30, time.Tuesday)
	if !d.RunMini || d.RunDeep {
		t.Fatalf("expected mini only at half hour, got %+v", d)
	}

	d = Decide(10, 15, time.Tuesday)
	if d.Any() {
		t.Fatalf("expected nothing off the half hour, got %+v", d)
	}
}

func TestDecideMarketOpenBoundary(t *testing.T) {
	// 09:30 is inside the market window, 09:00 is still pre-market.
	d := Decide(9, 30, time.Tuesday)
	if !d.RunMini || d.RunDeep {
		t.Fatalf("expected mini at market open, got %+v", d)
	}

	d = Decide(9, 0, time.Tuesday)
	if !d.RunMini || d.RunDeep {
		t.Fatalf("expected pre-market mini at 09:00, got %+v", d)
	}

	// 16:00 leaves the market window: after-market even hour runs deep.
	d = Decide(16, 0, time.Tuesday)
	if d.RunMini || !d.RunDeep {
		t.Fatalf("expected after-market deep at 16:00, got %+v", d)
	}
}

func TestDecideAfterMarketAlternates(t *testing.T) {
	d := Decide(17, 0, time.Tuesday)
	if !d.RunMini || d.RunDeep {
		t.Fatalf("expected mini on odd hour, got %+v", d)
	}

	d = Decide(18, 0, time.Tuesday)
	if d.RunMini || !d.RunDeep {
		t.Fatalf("expected deep on even hour, got %+v", d)
	}

	d = Decide(17, 30, time.Tuesday)
	if d.Any() {
		t.Fatalf("expected nothing off the hour, got %+v", d)
	}
}

func TestDecideEvening(t *testing.T) {
	d := Decide(21, 0, time.Wednesday)
	if d.RunMini || !d.RunDeep {
		t.Fatalf("expected deep at 21:00, got %+v", d)
	}

	for _, hour := range []int{19, 22, 1, 4} {
		d = Decide(hour, 0, time.Wednesday)
		if !d.RunMini || d.RunDeep {
			t.Fatalf("expected mini only at %d:00, got %+v", hour, d)
		}
	}

	d = Decide(23, 0, time.Wednesday)
	if d.Any() {
		t.Fatalf("expected idle hour at 23:00, got %+v", d)
	}
}

func TestDecidePreMarketDeepAtOpen(t *testing.T) {
	d := Decide(6, 0, time.Thursday)
	if !d.RunMini || !d.RunDeep {
		t.Fatalf("expected mini and deep at 06:00, got %+v", d)
	}

	d = Decide(7, 0, time.Thursday)
	if !d.RunMini || d.RunDeep {
		t.Fatalf("expected mini only at 07:00, got %+v", d)
	}
}

func TestDecideWeekend(t *testing.T) {
	d := Decide(10, 0, time.Saturday)
	if d.Any() {
		t.Fatalf("expected no market window on weekend, got %+v", d)
	}

	// Evening cadence applies regardless of weekday.
	d = Decide(21, 0, time.Sunday)
	if d.RunMini || !d.RunDeep {
		t.Fatalf("expected evening deep on Sunday, got %+v", d)
	}
}

func TestDecideIsPure(t *testing.T) {
	for i := 0; i < 5; i++ {
		a := Decide(18, 0, time.Monday)
		b := Decide(18, 0, time.Monday)
		if a != b {
			t.Fatalf("decision not deterministic: %+v vs %+v", a, b)
		}
	}
}

func TestDecideNeverBothInAfterMarket(t *testing.T) {
	for hour := 16; hour < 19; hour++ {
		for minute := 0; minute < 60; minute++ {
			d := Decide(hour, minute, time.Friday)
			if d.RunMini && d.RunDeep {
				t.Fatalf("after-market must never run both at %02d:%02d", hour, minute)
			}
		}
	}
}
