package host

import (
	"math/rand"
	"testing"
	"time"
)

func TestNextBackoffDelayDeterministicNoJitter(t *testing.T) {
	cfg := BackoffConfig{
		InitialDelay: 100 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     1 * time.Second,
	}
	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1 * time.Second,
		1 * time.Second,
	}
	for i, w := range want {
		if got := NextBackoffDelay(cfg, i+1, nil); got != w {
			t.Fatalf("attempt %d: expected %v, got %v", i+1, w, got)
		}
	}
}

func TestNextBackoffDelayJitterBounds(t *testing.T) {
	base := BackoffConfig{
		InitialDelay: 100 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
	}
	jittered := base
	jittered.Jitter = true

	rng := rand.New(rand.NewSource(1))
	for attempt := 2; attempt <= 6; attempt++ {
		ref := NextBackoffDelay(base, attempt, nil)
		got := NextBackoffDelay(jittered, attempt, rng)
		lo, hi := ref/2, ref+ref/2
		if got < lo || got > hi {
			t.Fatalf("attempt %d: delay %v outside [%v, %v]", attempt, got, lo, hi)
		}
	}
}

func TestNextBackoffDelayNilRngHalves(t *testing.T) {
	cfg := BackoffConfig{
		InitialDelay: 100 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       true,
	}
	if got := NextBackoffDelay(cfg, 2, nil); got != 100*time.Millisecond {
		t.Fatalf("expected halved delay 100ms, got %v", got)
	}
}

func TestNextBackoffDelayZeroInitial(t *testing.T) {
	if got := NextBackoffDelay(BackoffConfig{}, 3, nil); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}
