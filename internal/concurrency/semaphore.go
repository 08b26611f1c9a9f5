// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package concurrency provides the bounded in-flight request gate used
// around every outbound HTTP call (component B).
package concurrency

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/fuzzbin/fuzzbin/internal/ferrors"
)

// Limiter is a counting gate with a configured maximum. Acquire blocks
// when the count equals the max; Release wakes exactly one waiter.
// Built on golang.org/x/sync/semaphore, whose weighted semaphore
// already guarantees that a cancelled Acquire does not consume
// capacity (§4.B).
type Limiter struct {
	sem *semaphore.Weighted
	max int64
}

// New builds a Limiter admitting at most max concurrent holders.
func New(max int) *Limiter {
	if max <= 0 {
		max = 1
	}
	return &Limiter{sem: semaphore.NewWeighted(int64(max)), max: int64(max)}
}

// Acquire blocks until a slot is free or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return ferrors.Concurrency("ConcurrencyLimitCancelled", err)
	}
	return nil
}

// Release returns a previously acquired slot.
func (l *Limiter) Release() {
	l.sem.Release(1)
}

// Max reports the configured concurrency ceiling.
func (l *Limiter) Max() int { return int(l.max) }

// WithAcquire runs fn while holding one slot, releasing it regardless
// of fn's outcome. This is the scoped-acquisition pattern component E
// wraps around each outbound call.
func (l *Limiter) WithAcquire(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}
