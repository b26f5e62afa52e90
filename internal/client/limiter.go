package client

// limiter.go bounds the number of upstream fetches in flight.
//
// Every mounted table refetches on page, page size and filter changes, and a
// filter change refetches all of them at once. The limiter keeps that fan-out
// from opening an unbounded number of connections to the data service. When
// all slots are occupied, a fetch waits up to maxWait before failing with
// ErrTooManyFetches.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyFetches is returned when all fetch slots are occupied and the
// wait timeout expires.
var ErrTooManyFetches = errors.New("too many concurrent fetches, please try again later")

// DefaultMaxConcurrentFetches is the default limit for parallel fetches.
const DefaultMaxConcurrentFetches = 8

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 10 * time.Second

// Limiter controls concurrent fetches using a semaphore.
type Limiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewLimiter creates a limiter that allows at most maxConcurrent simultaneous
// fetches. Fetches that cannot acquire a slot within maxWait receive
// ErrTooManyFetches.
func NewLimiter(maxConcurrent int, maxWait time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentFetches
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &Limiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a fetch slot.
// The caller must call Release when the fetch completes.
func (l *Limiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyFetches
	}
}

// Release frees a slot taken by Acquire.
func (l *Limiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of fetches in flight.
func (l *Limiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the maximum allowed concurrent fetches.
func (l *Limiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// LimiterStatus is a snapshot of the limiter's state.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for the health endpoint.
func (l *Limiter) Status() LimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return LimiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
