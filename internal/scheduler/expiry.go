package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"field-match/internal/engine"
	"field-match/internal/store"
)

const sweepLockKey = "matches:sweep:lock"

type sweepLock interface {
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

// Scheduler drives the time-based side of the match lifecycle: the expiry
// sweep and the retention/archive pass. Expiry goes through the engine's
// transition entry point, so the sweep can never bypass the state machine,
// and sweeping an already-terminal match is a no-op, which makes the sweep
// re-entrant.
type Scheduler struct {
	engine    *engine.Engine
	store     *store.Store
	lock      sweepLock
	logger    *log.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

func New(eng *engine.Engine, st *store.Store, lock sweepLock, logger *log.Logger, interval, retention time.Duration) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &Scheduler{
		engine:    eng,
		store:     st,
		lock:      lock,
		logger:    logger,
		interval:  interval,
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the sweep clock for tests.
func (s *Scheduler) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Run sweeps on a fixed tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, archived, err := s.Sweep(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Printf("Scheduler | sweep error | error=%v", err)
				continue
			}
			if expired > 0 || archived > 0 {
				s.logger.Printf("Scheduler | sweep done | expired=%d archived=%d", expired, archived)
			}
		}
	}
}

// Sweep expires every due match and archives matches past retention. It is
// interruptible between entities; a partial sweep is safe since the next run
// picks up whatever remains. With a lock configured, only the instance that
// wins the lock sweeps this tick.
func (s *Scheduler) Sweep(ctx context.Context) (expired, archived int, err error) {
	if s.lock != nil {
		won, lockErr := s.lock.SetIfNotExists(ctx, sweepLockKey, "1", s.interval)
		if lockErr == nil && !won {
			return 0, 0, nil
		}
		// Lock errors fall through: an unavailable lock backend must not
		// stop expiry, double sweeps are idempotent.
	}

	now := s.now()
	for _, id := range s.store.DueMatches(now) {
		if err := ctx.Err(); err != nil {
			return expired, archived, err
		}
		_, applied, expErr := s.engine.ExpireMatch(ctx, id, now)
		if expErr != nil {
			if errors.Is(expErr, engine.ErrNotFound) {
				continue // archived or removed since the scan
			}
			s.logger.Printf("Scheduler | expire failed | match_id=%s error=%v", id, expErr)
			continue
		}
		if applied {
			expired++
		}
	}

	archived, err = s.engine.ArchiveRetired(ctx, now, s.retention)
	return expired, archived, err
}
