package engine

import (
	"context"
	"log"
	"time"

	"field-match/internal/domain/match"
	"field-match/internal/domain/notification"
	"field-match/internal/store"

	"github.com/google/uuid"
)

// Notifier receives every notification the engine creates, for real-time
// delivery (websocket push). Implementations must not block.
type Notifier interface {
	NotificationCreated(n notification.Notification)
}

// Invalidator is told which aggregation inputs changed after a write is
// applied to the store. Implementations recompute asynchronously.
type Invalidator interface {
	MatchesChanged(jobID uuid.UUID)
	NotificationsChanged(recipientID uuid.UUID)
	RatingsChanged(userID uuid.UUID)
}

// Archiver moves matches out of the live store into durable archive storage
// when their job closes or their retention window elapses.
type Archiver interface {
	ArchiveMatches(ctx context.Context, matches []match.Match) error
}

// Engine applies all entity lifecycle transitions. Per-entity serialization
// comes from the store's shard locks: every transition for one entity runs
// inside a single store update critical section, and the decision whether a
// side effect fires is made inside that section.
type Engine struct {
	store       *store.Store
	notifier    Notifier
	invalidator Invalidator
	archiver    Archiver
	logger      *log.Logger
	now         func() time.Time
}

// New builds an engine. notifier, invalidator and archiver may be nil; the
// corresponding side effects are then skipped.
func New(st *store.Store, notifier Notifier, invalidator Invalidator, archiver Archiver, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		store:       st,
		notifier:    notifier,
		invalidator: invalidator,
		archiver:    archiver,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the engine clock. Intended for tests and the expiry
// scheduler's logical ticks.
func (e *Engine) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

func (e *Engine) Store() *store.Store {
	return e.store
}

func (e *Engine) invalidateMatches(jobID uuid.UUID) {
	if e.invalidator != nil {
		e.invalidator.MatchesChanged(jobID)
	}
}

func (e *Engine) invalidateNotifications(recipientID uuid.UUID) {
	if e.invalidator != nil {
		e.invalidator.NotificationsChanged(recipientID)
	}
}

func (e *Engine) invalidateRatings(userID uuid.UUID) {
	if e.invalidator != nil {
		e.invalidator.RatingsChanged(userID)
	}
}
