// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package ratelimit provides the token-bucket admission gate for
// outbound metadata-service requests (component A).
package ratelimit

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/fuzzbin/fuzzbin/internal/ferrors"
)

var waitSeconds = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "fuzzbin",
		Subsystem: "ratelimit",
		Name:      "acquire_wait_seconds",
		Help:      "Time callers spent blocked in Acquire before admission.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"service"},
)

// Window is one token-bucket configuration: a rate and a burst size.
// At least one Window must be configured; per_second/per_minute/per_hour
// map onto distinct Windows that compose as a logical AND.
type Window struct {
	Limit rate.Limit
	Burst int
}

// PerSecond builds a Window from a requests-per-second rate. Burst
// defaults to 1 (the tightest admission) when burst <= 0.
func PerSecond(n float64, burst int) Window {
	if burst <= 0 {
		burst = 1
	}
	return Window{Limit: rate.Limit(n), Burst: burst}
}

// PerMinute builds a Window from a requests-per-minute rate.
func PerMinute(n float64, burst int) Window {
	if burst <= 0 {
		burst = 1
	}
	return Window{Limit: rate.Limit(n / 60.0), Burst: burst}
}

// PerHour builds a Window from a requests-per-hour rate.
func PerHour(n float64, burst int) Window {
	if burst <= 0 {
		burst = 1
	}
	return Window{Limit: rate.Limit(n / 3600.0), Burst: burst}
}

// Limiter is a fair, cancellable, multi-window token bucket. Acquire
// blocks until every configured window has a token available; it
// never returns an error for being rate-limited, only for context
// cancellation (§4.A: "Failure: none; never errors" in the admitted
// path, cancellation is the only exit).
type Limiter struct {
	service  string
	limiters []*rate.Limiter
}

// New builds a Limiter composing one or more Windows. Windows compose
// as a logical AND: Acquire waits for the most restrictive.
func New(service string, windows ...Window) *Limiter {
	l := &Limiter{service: service}
	for _, w := range windows {
		l.limiters = append(l.limiters, rate.NewLimiter(w.Limit, w.Burst))
	}
	if len(l.limiters) == 0 {
		// A limiter with no configured window never blocks.
		l.limiters = append(l.limiters, rate.NewLimiter(rate.Inf, 1))
	}
	return l
}

// Acquire blocks until a token is available in every window, or ctx is
// done. golang.org/x/time/rate.Limiter.Wait already implements FIFO
// reservation semantics and never consumes a token when the context is
// cancelled before the reservation's delay elapses, which is exactly
// the cancellation contract §5 requires.
func (l *Limiter) Acquire(ctx context.Context) error {
	timer := prometheus.NewTimer(waitSeconds.WithLabelValues(l.service))
	defer timer.ObserveDuration()

	for _, rl := range l.limiters {
		if err := rl.Wait(ctx); err != nil {
			return ferrors.Concurrency("RateLimitCancelled", err)
		}
	}
	return nil
}
