// Package debounce provides the cancel-and-restart timer discipline used by
// the OP No reconciliation lookup: many keystrokes arrive, only the latest
// one is allowed to trigger a backend query.
package debounce

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded is returned from Wait when a newer Wait on the same key
// arrives before the quiet period elapses.
var ErrSuperseded = errors.New("debounce: superseded by a newer call")

// Debouncer serializes bursts of calls per key down to the single most
// recent one. There is exactly one pending timer per key at any time.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]chan struct{}
}

// New creates a Debouncer with the given quiet period.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]chan struct{}),
	}
}

// Wait blocks until the quiet period elapses with no newer Wait on the same
// key. It returns nil when the caller won and may proceed, ErrSuperseded
// when a newer call replaced it, or ctx.Err() when the caller gave up.
func (d *Debouncer) Wait(ctx context.Context, key string) error {
	cancel := make(chan struct{})

	d.mu.Lock()
	if prev, ok := d.pending[key]; ok {
		close(prev)
	}
	d.pending[key] = cancel
	d.mu.Unlock()

	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		d.mu.Lock()
		if d.pending[key] == cancel {
			delete(d.pending, key)
		}
		d.mu.Unlock()
		return nil
	case <-cancel:
		return ErrSuperseded
	case <-ctx.Done():
		d.mu.Lock()
		if d.pending[key] == cancel {
			delete(d.pending, key)
		}
		d.mu.Unlock()
		return ctx.Err()
	}
}
