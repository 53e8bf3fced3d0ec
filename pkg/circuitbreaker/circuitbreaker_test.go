package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

var errDown = errors.New("broker down")

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)}
	b := New(Config{FailureThreshold: 2, Cooldown: time.Minute, Now: clock.Now})

	calls := 0
	fail := func() error { calls++; return errDown }

	_ = b.Execute(fail)
	if b.State() != StateClosed {
		t.Fatalf("expected closed after one failure, got %s", b.State())
	}
	_ = b.Execute(fail)
	if b.State() != StateOpen {
		t.Fatalf("expected open after threshold, got %s", b.State())
	}

	if err := b.Execute(fail); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("open breaker must not call fn, calls=%d", calls)
	}
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)}
	b := New(Config{FailureThreshold: 1, Cooldown: time.Minute, Now: clock.Now})

	_ = b.Execute(func() error { return errDown })
	clock.t = clock.t.Add(time.Minute)

	// failed probe re-opens
	if err := b.Execute(func() error { return errDown }); !errors.Is(err, errDown) {
		t.Fatalf("expected probe to run, got %v", err)
	}
	if b.State() != StateOpen {
		t.Fatalf("expected re-open after failed probe, got %s", b.State())
	}

	clock.t = clock.t.Add(time.Minute)
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("expected closed after successful probe, got %s", b.State())
	}
}

func TestBreaker_Defaults(t *testing.T) {
	b := New(Config{})
	if b.cfg.FailureThreshold != 5 || b.cfg.Cooldown != 30*time.Second || b.cfg.Now == nil {
		t.Fatalf("unexpected defaults %+v", b.cfg)
	}
}
