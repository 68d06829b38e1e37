// Package pace throttles the LLM batch loop: the orchestrator waits between
// consecutive batches so the upstream provider's rate limits are respected.
package pace

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Pacer enforces a minimum delay between consecutive calls to Wait.
type Pacer struct {
	mu       sync.Mutex
	lastCall time.Time
	minDelay time.Duration
}

// New creates a pacer enforcing minDelay between consecutive Wait returns.
// A zero or negative minDelay disables waiting.
func New(minDelay time.Duration) *Pacer {
	return &Pacer{minDelay: minDelay}
}

// Wait blocks until minDelay has passed since the previous call, or returns
// early with the context error on cancellation. The first call never waits.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()

	if p.lastCall.IsZero() || now.Sub(p.lastCall) >= p.minDelay {
		p.lastCall = now
		p.mu.Unlock()
		return nil
	}

	remaining := p.minDelay - now.Sub(p.lastCall)
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("pacer wait: %w", ctx.Err())
	case <-time.After(remaining):
	}

	p.mu.Lock()
	p.lastCall = time.Now()
	p.mu.Unlock()

	return nil
}
