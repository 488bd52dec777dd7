package supervisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRun_DoublesDelayUpToCap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sleeps []time.Duration
	calls := 0
	serve := func(ctx context.Context) error {
		calls++
		if calls == 12 {
			cancel()
		}
		return errors.New("network down")
	}

	s := New(serve, zap.NewNop(), WithSleep(func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}))
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []time.Duration{1, 2, 4, 8, 16, 32, 64, 128, 256, 300, 300}
	if len(sleeps) != len(want) {
		t.Fatalf("sleeps = %v", sleeps)
	}
	for i, w := range want {
		if sleeps[i] != w*time.Second {
			t.Fatalf("sleep %d = %v, want %v (all: %v)", i, sleeps[i], w*time.Second, sleeps)
		}
	}
}

func TestRun_CleanReturnResetsDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sleeps []time.Duration
	results := []error{errors.New("a"), errors.New("b"), nil, errors.New("c")}
	calls := 0
	serve := func(ctx context.Context) error {
		err := results[calls]
		calls++
		if calls == len(results) {
			cancel()
		}
		return err
	}

	s := New(serve, zap.NewNop(), WithSleep(func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}))
	_ = s.Run(ctx)

	want := []time.Duration{time.Second, 2 * time.Second, time.Second}
	if len(sleeps) != len(want) {
		t.Fatalf("sleeps = %v", sleeps)
	}
	for i := range want {
		if sleeps[i] != want[i] {
			t.Fatalf("sleeps = %v, want %v", sleeps, want)
		}
	}
}

func TestRun_StopsWhenSleepInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(func(context.Context) error { return errors.New("boom") }, zap.NewNop(),
		WithSleep(func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		}))

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop")
	}
}
