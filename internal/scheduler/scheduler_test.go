package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubSweeper struct {
	calls   atomic.Int32
	removed int
	err     error
}

func (s *stubSweeper) Sweep(context.Context) (int, error) {
	s.calls.Add(1)
	return s.removed, s.err
}

func TestRunOnceSweepsAllTargets(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	failing := &stubSweeper{err: errors.New("store offline")}
	salary := &stubSweeper{removed: 3}

	s, err := New(time.Hour, zap.New(core), Target{Name: "match", Sweeper: failing}, Target{Name: "salary", Sweeper: salary})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.RunOnce(context.Background())

	if failing.calls.Load() != 1 || salary.calls.Load() != 1 {
		t.Fatalf("expected every target to be swept once")
	}

	removed := observed.FilterMessage("expired cache entries removed").All()
	if len(removed) != 1 || removed[0].ContextMap()["cache"] != "salary" {
		t.Fatalf("unexpected removal logs: %+v", removed)
	}
	if observed.FilterMessage("cache sweep failed").Len() != 1 {
		t.Fatalf("expected failure to be logged")
	}
}

func TestSchedulerTicks(t *testing.T) {
	sweeper := &stubSweeper{}
	s, err := New(time.Second, nil, Target{Name: "salary", Sweeper: sweeper})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for sweeper.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected the sweep to run at least once")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestNewRejectsNonPositiveInterval(t *testing.T) {
	if _, err := New(0, nil); err == nil {
		t.Fatalf("expected error for zero interval")
	}
}
