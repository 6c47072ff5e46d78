package dispatch

import (
	"context"
	"fmt"
	"time"

	"field-match/internal/engine"

	"github.com/google/uuid"
)

// MatchInterestEvent is a pushed engineer-interest signal.
type MatchInterestEvent struct {
	MatchID uuid.UUID
	Message string
}

func (e MatchInterestEvent) EntityKey() uuid.UUID { return e.MatchID }

// MatchResponseEvent is a replayed client accept/decline.
type MatchResponseEvent struct {
	MatchID uuid.UUID
	Action  engine.Action
}

func (e MatchResponseEvent) EntityKey() uuid.UUID { return e.MatchID }

// MatchExpireEvent is a timer-driven expiry for one match.
type MatchExpireEvent struct {
	MatchID uuid.UUID
	Now     time.Time
}

func (e MatchExpireEvent) EntityKey() uuid.UUID { return e.MatchID }

// EngineHandler routes events into the lifecycle engine's transition entry
// points, so queued stimuli obey exactly the same rules as direct commands.
func EngineHandler(eng *engine.Engine) Handler {
	return func(ctx context.Context, ev Event) error {
		switch ev := ev.(type) {
		case MatchInterestEvent:
			_, err := eng.MarkInterested(ctx, ev.MatchID, ev.Message)
			return err
		case MatchResponseEvent:
			_, err := eng.Respond(ctx, ev.MatchID, ev.Action)
			return err
		case MatchExpireEvent:
			_, _, err := eng.ExpireMatch(ctx, ev.MatchID, ev.Now)
			return err
		default:
			return fmt.Errorf("unknown event type %T", ev)
		}
	}
}
