package resilience

import "testing"

func TestCalculateBackoff_DefaultProgression(t *testing.T) {
	p := DefaultRetryPolicy()
	want := []int64{100, 200, 400, 800}
	for i, attempt := range []int{1, 2, 3, 4} {
		if got := p.CalculateBackoff(attempt); got != want[i] {
			t.Fatalf("attempt %d: want %d, got %d", attempt, want[i], got)
		}
	}
}

func TestCalculateBackoff_CapsAtMaxBackoff(t *testing.T) {
	p := DefaultRetryPolicy()
	p.MaxBackoffMs = 500
	if got := p.CalculateBackoff(4); got != 500 {
		t.Fatalf("want capped 500, got %d", got)
	}
}

func TestCalculateBackoff_ZeroAttemptIsZero(t *testing.T) {
	p := DefaultRetryPolicy()
	if got := p.CalculateBackoff(0); got != 0 {
		t.Fatalf("want 0, got %d", got)
	}
}

func TestCalculateBackoff_StrictlyIncreasingUntilCap(t *testing.T) {
	p := DefaultRetryPolicy()
	prev := p.CalculateBackoff(1)
	for attempt := 2; attempt <= 6; attempt++ {
		cur := p.CalculateBackoff(attempt)
		if cur <= prev && cur < p.MaxBackoffMs {
			t.Fatalf("backoff did not increase below the cap at attempt %d: %d <= %d", attempt, cur, prev)
		}
		if cur > p.MaxBackoffMs {
			t.Fatalf("backoff %d exceeds cap %d at attempt %d", cur, p.MaxBackoffMs, attempt)
		}
		prev = cur
	}
}
