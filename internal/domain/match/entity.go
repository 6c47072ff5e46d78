package match

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a match. Transitions are monotonic:
// viewing -> {interested, accepted, declined, expired},
// interested -> {accepted, declined, expired},
// accepted/declined/expired are terminal.
type State string

const (
	StateViewing    State = "viewing"
	StateInterested State = "interested"
	StateAccepted   State = "accepted"
	StateDeclined   State = "declined"
	StateExpired    State = "expired"
)

func (s State) Valid() bool {
	switch s {
	case StateViewing, StateInterested, StateAccepted, StateDeclined, StateExpired:
		return true
	}
	return false
}

func (s State) Terminal() bool {
	switch s {
	case StateAccepted, StateDeclined, StateExpired:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to target is legal.
// The idempotent same-terminal case is not a transition; callers handle it.
func (s State) CanTransition(target State) bool {
	switch s {
	case StateViewing:
		return target == StateInterested || target == StateAccepted ||
			target == StateDeclined || target == StateExpired
	case StateInterested:
		return target == StateAccepted || target == StateDeclined || target == StateExpired
	}
	return false
}

// Match is one engineer's candidacy for one job posting.
type Match struct {
	ID                uuid.UUID
	JobID             uuid.UUID
	EngineerID        uuid.UUID
	ClientID          uuid.UUID
	MatchScore        int
	EstimatedPrice    int64
	ProposedStartDate time.Time
	Message           string
	State             State
	CreatedAt         time.Time
	ViewedAt          *time.Time
	RespondedAt       *time.Time
	ExpiresAt         time.Time
}

func (m Match) Terminal() bool {
	return m.State.Terminal()
}

// DueForExpiry reports whether the expiry sweep should transition m.
func (m Match) DueForExpiry(now time.Time) bool {
	return !m.Terminal() && !m.ExpiresAt.After(now)
}

// RetiredBy reports whether m has left its retention window and can be
// archived out of the live store.
func (m Match) RetiredBy(now time.Time, retention time.Duration) bool {
	return m.Terminal() && m.ExpiresAt.Add(retention).Before(now)
}
