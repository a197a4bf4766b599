package internal

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig adds a sustained throughput ceiling on top of the
// minimum spacing between requests.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Zero disables the ceiling.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 1 if zero.
	Burst int
}

const SecondsPerMinute = 60.0

// pacer is the single gate every network attempt passes through. Holding
// the gate covers wait, send and record, so spacing holds across goroutines.
type pacer struct {
	gate        chan struct{}
	clock       Clock
	minInterval time.Duration
	limiter     *rate.Limiter

	mu   sync.Mutex
	last time.Time
}

func newPacer(clock Clock, minInterval time.Duration, cfg *RateLimitConfig) *pacer {
	return &pacer{
		gate:        make(chan struct{}, 1),
		clock:       clock,
		minInterval: minInterval,
		limiter:     buildLimiter(cfg),
	}
}

func buildLimiter(cfg *RateLimitConfig) *rate.Limiter {
	if cfg == nil || cfg.RequestsPerMinute <= 0 {
		return nil
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/SecondsPerMinute), burst)
}

// Do waits for the gate and the spacing floor, runs send, then records the
// attempt time. send runs whether it succeeds or not; the record is what
// the next caller is spaced against.
func (p *pacer) Do(ctx context.Context, send func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case p.gate <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.gate }()

	if err := p.wait(ctx); err != nil {
		return err
	}

	send()

	p.mu.Lock()
	p.last = p.clock.Now()
	p.mu.Unlock()
	return nil
}

func (p *pacer) wait(ctx context.Context) error {
	now := p.clock.Now()
	last := p.Last()

	var wait time.Duration
	if !last.IsZero() {
		wait = p.minInterval - now.Sub(last)
	}

	var reservation *rate.Reservation
	if p.limiter != nil {
		reservation = p.limiter.ReserveN(now, 1)
		if d := reservation.DelayFrom(now); d > wait {
			wait = d
		}
	}

	if wait <= 0 {
		return nil
	}

	select {
	case <-p.clock.After(wait):
		return nil
	case <-ctx.Done():
		if reservation != nil {
			reservation.CancelAt(now)
		}
		return ctx.Err()
	}
}

// Last returns the time the most recent attempt finished.
func (p *pacer) Last() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
