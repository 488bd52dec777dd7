// Package supervisor keeps the serving loop alive: on failure it waits an
// exponentially growing delay and starts it again until the context ends.
package supervisor

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/Vovarama1992/genbot/internal/metrics"
)

const (
	DefaultInitialDelay = time.Second
	DefaultMaxDelay     = 300 * time.Second
)

// ServeFunc runs until ctx is cancelled or it fails.
type ServeFunc func(ctx context.Context) error

type SleepFunc func(ctx context.Context, d time.Duration) error

type Supervisor struct {
	serve        ServeFunc
	log          *zap.Logger
	sleep        SleepFunc
	initialDelay time.Duration
	maxDelay     time.Duration
}

type Option func(*Supervisor)

func WithSleep(fn SleepFunc) Option {
	return func(s *Supervisor) { s.sleep = fn }
}

func WithDelays(initial, maxDelay time.Duration) Option {
	return func(s *Supervisor) {
		s.initialDelay = initial
		s.maxDelay = maxDelay
	}
}

func New(serve ServeFunc, log *zap.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		serve:        serve,
		log:          log,
		sleep:        sleepCtx,
		initialDelay: DefaultInitialDelay,
		maxDelay:     DefaultMaxDelay,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Supervisor) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initialDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = s.maxDelay
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Run blocks until ctx is done. Errors never stop it; each consecutive failure
// doubles the wait up to the cap, a clean return resets it.
func (s *Supervisor) Run(ctx context.Context) error {
	b := s.newBackOff()

	for {
		err := s.serve(ctx)
		if ctx.Err() != nil {
			s.log.Info("[supervisor] stopped")
			return nil
		}

		if err == nil {
			b.Reset()
		}
		delay := b.NextBackOff()

		if err != nil {
			s.log.Error("[supervisor] serve failed, restarting", zap.Error(err), zap.Duration("delay", delay))
		} else {
			s.log.Warn("[supervisor] serve returned, restarting", zap.Duration("delay", delay))
		}
		metrics.Restarts.Inc()

		if err := s.sleep(ctx, delay); err != nil {
			s.log.Info("[supervisor] stopped")
			return nil
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
