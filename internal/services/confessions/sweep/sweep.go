// Package sweep removes expired confessions on a fixed interval.
//
// The read path already filters expired rows, so sweeping is purely a
// storage reclamation job; a missed pass is harmless.
package sweep

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/louisbranch/confide.space/internal/services/confessions/storage"
)

// DefaultInterval is how often the sweeper runs when not overridden.
const DefaultInterval = 10 * time.Minute

// Sweeper periodically deletes expired confessions.
type Sweeper struct {
	store      storage.ConfessionStore
	interval   time.Duration
	now        func() time.Time
	retryDelay time.Duration
}

// New creates a sweeper over the given store. A non-positive interval falls
// back to DefaultInterval.
func New(store storage.ConfessionStore, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		store:      store,
		interval:   interval,
		now:        time.Now,
		retryDelay: time.Second,
	}
}

// Run sweeps once immediately and then on every tick until the context ends.
func (s *Sweeper) Run(ctx context.Context) error {
	if err := s.SweepOnce(ctx); err != nil {
		log.Printf("sweep: %v", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				log.Printf("sweep: %v", err)
			}
		}
	}
}

// SweepOnce runs a single deletion pass. Transient store errors, typically
// SQLITE_BUSY under write load, are retried with backoff.
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	var deleted int64
	err := retry.Do(
		func() error {
			n, err := s.store.DeleteExpired(ctx, s.now().UTC())
			if err != nil {
				return err
			}
			deleted = n
			return nil
		},
		retry.Attempts(5),
		retry.Delay(s.retryDelay),
		retry.MaxDelay(30*time.Second),
		retry.MaxJitter(s.retryDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("retrying expiry sweep after error: attempt=%d err=%v", n, err)
		}),
	)
	if err != nil {
		return fmt.Errorf("delete expired confessions: %w", err)
	}
	if deleted > 0 {
		log.Printf("swept %d expired confessions", deleted)
	}
	return nil
}
