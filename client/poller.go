package client

import (
	"context"
	"sync/atomic"
	"time"
)

const (
	// DefaultPollInterval is used when an option is left zero.
	DefaultPollInterval = 2 * time.Second
	// MinPollInterval is the enforced floor so a misconfigured client cannot
	// hammer the API.
	MinPollInterval = 500 * time.Millisecond
)

// poller re-invokes fn on a fixed interval. Cycles are serialized: the timer
// is re-armed only after fn returns, so a slow fetch can never overlap the
// next one within the same stream. Cycle errors go to onError and never stop
// the loop; cancellation stops it with no further callbacks.
type poller struct {
	interval time.Duration
	fn       func(ctx context.Context) error
	onError  func(error)
	paused   atomic.Bool
}

func newPoller(interval time.Duration, fn func(ctx context.Context) error, onError func(error)) *poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if interval < MinPollInterval {
		interval = MinPollInterval
	}
	return &poller{
		interval: interval,
		fn:       fn,
		onError:  onError,
	}
}

func (p *poller) pause()  { p.paused.Store(true) }
func (p *poller) resume() { p.paused.Store(false) }

func (p *poller) run(ctx context.Context) {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if !p.paused.Load() {
				if err := p.fn(ctx); err != nil && ctx.Err() == nil && p.onError != nil {
					p.onError(err)
				}
			}
			timer.Reset(p.interval)
		}
	}
}
