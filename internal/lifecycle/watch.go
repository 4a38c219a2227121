package lifecycle

import (
	"context"
	"sync"
	"time"
)

// DefaultWatchInterval keeps countdowns smooth.
const DefaultWatchInterval = 100 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	Policy Policy
	// Interval between evaluations, DefaultWatchInterval when zero.
	Interval time.Duration
	// Now is the clock, time.Now when nil.
	Now func() time.Time
	// OnTick receives the countdown after every evaluation that is not yet expired.
	OnTick func(remaining time.Duration, progress float64)
	// OnExpire is called once when the policy reports expiry.
	OnExpire func()
}

// Watch re-evaluates the policy immediately and then every Interval until the
// secret expires, ctx is cancelled or stop is called. stop blocks until the
// watcher goroutine has exited, so no callback runs after it returns.
// Callbacks must not call stop themselves.
//
// Secrets that never expire are not watched; the returned stop is a no-op.
func Watch(ctx context.Context, opts WatchOptions) (stop func()) {
	if _, ok := opts.Policy.ExpiresAt(); !ok {
		return func() {}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultWatchInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(opts.Interval)
		defer ticker.Stop()

		for {
			if evaluate(ctx, opts) {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(cancel)
		<-done
	}
}

// evaluate runs one step and reports whether the watcher is finished.
func evaluate(ctx context.Context, opts WatchOptions) bool {
	if ctx.Err() != nil {
		return true
	}
	now := opts.Now()
	if opts.Policy.Expired(now) {
		if opts.OnExpire != nil {
			opts.OnExpire()
		}
		return true
	}
	if opts.OnTick != nil {
		remaining, _ := opts.Policy.Remaining(now)
		opts.OnTick(remaining, opts.Policy.Progress(now))
	}
	return false
}
